package cancel_appointment

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointment ID must be positive", ErrInvalidInput)
	}
	if req.Actor.ID <= 0 || !req.Actor.Role.IsValid() {
		return fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}
	if req.Reason != nil && utf8.RuneCountInString(strings.TrimSpace(*req.Reason)) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}
	return nil
}

// canCancel владелец записи или администратор
func canCancel(actor domain.Actor, a *domain.Appointment) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.IsCustomer() && a.CustomerID == actor.ID
}
