package update_setting

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/settings/models"
)

type SettingsService interface {
	Update(ctx context.Context, req *models.UpdateSettingRequest) (*models.SettingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
