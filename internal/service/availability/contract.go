package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// ServiceRepository интерфейс каталога услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// StaffRepository интерфейс репозитория мастеров
type StaffRepository interface {
	ListActiveWorkers(ctx context.Context) ([]*domain.StaffMember, error)
	LockByIDs(ctx context.Context, ids []int64) error
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListActiveByStaffInRange(ctx context.Context, staffIDs []int64, start, end time.Time) ([]*domain.Appointment, error)
}

// ShopHoursProvider источник часов работы салона
type ShopHoursProvider interface {
	GetShopHours(ctx context.Context) (domain.ShopHours, error)
}

// RandomSource источник случайных чисел для выбора мастера (совместим с *rand.Rand из math/rand/v2)
type RandomSource interface {
	IntN(n int) int
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
