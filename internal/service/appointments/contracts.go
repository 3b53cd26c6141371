package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	ListActiveByStaffInRange(ctx context.Context, staffIDs []int64, start, end time.Time) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	AssignStaff(ctx context.Context, id int64, staffID int64) error
	Cancel(ctx context.Context, id int64, params appointmentRepo.CancelParams) error
	MarkPaid(ctx context.Context, id int64, transactionID string) error
}

// StaffRepository интерфейс репозитория мастеров
type StaffRepository interface {
	GetActiveWorker(ctx context.Context, id int64) (*domain.StaffMember, error)
	LockByIDs(ctx context.Context, ids []int64) error
}

// OutboxRepository интерфейс репозитория исходящих событий
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.OutboxEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
