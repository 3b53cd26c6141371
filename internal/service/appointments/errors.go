package appointments

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("%w: appointment", domain.ErrNotFound)

	// ErrStaffNotFound возвращается, когда мастер для переназначения не найден или неактивен
	ErrStaffNotFound = fmt.Errorf("%w: active staff member", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда у пользователя нет прав на запись
	ErrAccessDenied = fmt.Errorf("%w: access denied", domain.ErrForbidden)

	// ErrInvalidTransition возвращается при недопустимом переходе статуса
	ErrInvalidTransition = fmt.Errorf("appointments: %w", domain.ErrInvalidTransition)

	// ErrStaffUnavailable возвращается, когда у нового мастера уже есть запись на это время
	ErrStaffUnavailable = fmt.Errorf("appointments: %w: staff member is busy at this time", domain.ErrNoStaffAvailable)

	// ErrAlreadyPaid возвращается при попытке записать другой платеж для оплаченной записи
	ErrAlreadyPaid = fmt.Errorf("%w: appointment is already paid", domain.ErrValidation)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: appointments: invalid input data", domain.ErrValidation)

	// ErrConcurrencyConflict возвращается, когда блокировку мастера выиграла параллельная транзакция
	ErrConcurrencyConflict = fmt.Errorf("appointments: %w", domain.ErrConcurrencyConflict)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("appointments.service: internal error")
)
