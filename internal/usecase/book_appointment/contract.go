package book_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability"
)

// AvailabilityResolver поиск и выбор свободного мастера
type AvailabilityResolver interface {
	Resolve(ctx context.Context, req availability.Request) (*availability.Result, error)
	Pick(available []*domain.StaffMember) *domain.StaffMember
}

// ServiceRepository интерфейс каталога услуг (нужен для записи без мастера)
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
}

// OutboxRepository интерфейс репозитория исходящих событий
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.OutboxEvent) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики бронирований
type Metrics interface {
	IncBooking(result string)
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
