package settings

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// SettingsRepository интерфейс репозитория настроек
type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	Upsert(ctx context.Context, setting *domain.Setting) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
