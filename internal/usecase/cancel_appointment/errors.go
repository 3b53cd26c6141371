package cancel_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: cancel_appointment: invalid input data", domain.ErrValidation)

	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("%w: appointment", domain.ErrNotFound)

	// ErrForbidden возвращается, когда запись отменяет не ее владелец и не администратор
	ErrForbidden = fmt.Errorf("%w: only the customer or an admin can cancel the appointment", domain.ErrForbidden)

	// ErrRefundProcessingFailed возвращается, когда возврат не удался; запись не отменяется
	ErrRefundProcessingFailed = fmt.Errorf("cancel_appointment: %w", domain.ErrRefundProcessingFailed)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_appointment: internal error")
)
