package availability

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrInvalidStartTime возвращается, когда время начала не задано
	ErrInvalidStartTime = fmt.Errorf("%w: start time is required", domain.ErrValidation)

	// ErrStartTimeInPast возвращается, когда время начала уже прошло
	ErrStartTimeInPast = fmt.Errorf("%w: start time is in the past", domain.ErrValidation)

	// ErrBeyondBookingHorizon возвращается, когда запись дальше горизонта бронирования
	ErrBeyondBookingHorizon = fmt.Errorf("%w: start time is beyond the booking horizon", domain.ErrValidation)

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = fmt.Errorf("%w: service", domain.ErrNotFound)

	// ErrOutsideBusinessHours возвращается, когда запись выходит за часы работы салона
	ErrOutsideBusinessHours = fmt.Errorf("availability: %w", domain.ErrOutsideBusinessHours)

	// ErrNoQualifiedStaff возвращается, когда ни один мастер не выполняет услугу
	ErrNoQualifiedStaff = fmt.Errorf("availability: %w", domain.ErrNoQualifiedStaff)

	// ErrNoStaffAvailable возвращается, когда квалифицированные мастера заняты или не работают в это время
	ErrNoStaffAvailable = fmt.Errorf("availability: %w", domain.ErrNoStaffAvailable)

	// ErrConcurrencyConflict возвращается, когда параллельная транзакция выиграла блокировку
	// (deadlock, serialization failure); попытку бронирования можно повторить
	ErrConcurrencyConflict = fmt.Errorf("availability: %w", domain.ErrConcurrencyConflict)

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("availability: internal error")
)
