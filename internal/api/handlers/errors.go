package handlers

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// StatusFor сопоставляет вид доменной ошибки с HTTP кодом
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrOutsideBusinessHours),
		errors.Is(err, domain.ErrNoQualifiedStaff),
		errors.Is(err, domain.ErrNoStaffAvailable),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrDailyCancellationLimitExceeded),
		errors.Is(err, domain.ErrTooLateToCancel),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRefundProcessingFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
