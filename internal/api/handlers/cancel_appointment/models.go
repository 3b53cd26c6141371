package cancel_appointment

import (
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
	cancelAppointment "github.com/m04kA/SMC-SalonBookingService/internal/usecase/cancel_appointment"
)

// CancelAppointmentRequest HTTP request model
type CancelAppointmentRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// RefundResponse итог возврата
type RefundResponse struct {
	Kind   string `json:"kind"` // none, full, partial
	Amount string `json:"amount"`
}

// CancelAppointmentResponse HTTP response model
type CancelAppointmentResponse struct {
	Appointment *models.AppointmentResponse `json:"appointment"`
	Refund      RefundResponse              `json:"refund"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelAppointment.Response) *CancelAppointmentResponse {
	return &CancelAppointmentResponse{
		Appointment: models.FromDomainAppointment(resp.Appointment),
		Refund: RefundResponse{
			Kind:   resp.RefundKind,
			Amount: resp.RefundAmount.StringFixed(2),
		},
	}
}
