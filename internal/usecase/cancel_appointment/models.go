package cancel_appointment

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модель запроса на отмену
type Request struct {
	AppointmentID int64
	Actor         domain.Actor
	Reason        *string
}

// Response отмененная запись и результат возврата
type Response struct {
	Appointment  *domain.Appointment
	RefundKind   string
	RefundAmount decimal.Decimal
}

// Результаты для метрик
const (
	resultCancelled = "cancelled"
	resultRejected  = "rejected"
	resultFailed    = "refund_failed"
	resultError     = "error"
)
