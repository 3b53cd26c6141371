package book_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: book_appointment: invalid input data", domain.ErrValidation)

	// ErrNoStaffAvailable возвращается, когда после повторной попытки мастер так и не найден
	ErrNoStaffAvailable = fmt.Errorf("book_appointment: %w", domain.ErrNoStaffAvailable)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_appointment: internal error")
)
