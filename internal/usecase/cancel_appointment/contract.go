package cancel_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/paymentgateway"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error)
	CountCancelledByCustomerSince(ctx context.Context, customerID int64, since time.Time) (int, error)
	Cancel(ctx context.Context, id int64, params appointmentRepo.CancelParams) error
}

// OutboxRepository интерфейс репозитория исходящих событий
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.OutboxEvent) error
}

// PaymentGateway платежная система для возвратов
type PaymentGateway interface {
	CreateRefund(ctx context.Context, req paymentgateway.RefundRequest) (*paymentgateway.RefundResult, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчики отмен и возвратов
type Metrics interface {
	IncCancellation(result string)
	IncRefund(kind string)
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
