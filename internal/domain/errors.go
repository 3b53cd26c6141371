package domain

import "errors"

// Виды ошибок. Пакетные ошибки оборачивают их, чтобы транспортный слой
// мог сопоставить любую ошибку с кодом ответа через errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")

	ErrOutsideBusinessHours = errors.New("outside business hours")
	ErrNoQualifiedStaff     = errors.New("no qualified staff")
	ErrNoStaffAvailable     = errors.New("no staff available")

	ErrAlreadyCancelled               = errors.New("appointment already cancelled")
	ErrDailyCancellationLimitExceeded = errors.New("daily cancellation limit exceeded")
	ErrTooLateToCancel                = errors.New("too late to cancel")
	ErrInvalidTransition              = errors.New("invalid status transition")

	ErrRefundProcessingFailed = errors.New("refund processing failed")
	ErrConcurrencyConflict    = errors.New("concurrency conflict")
)
