package cancellation

import (
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrAlreadyCancelled возвращается при повторной отмене
	ErrAlreadyCancelled = fmt.Errorf("cancellation: %w", domain.ErrAlreadyCancelled)

	// ErrDailyLimitExceeded возвращается, когда клиент исчерпал лимит отмен на сегодня
	ErrDailyLimitExceeded = fmt.Errorf("cancellation: %w", domain.ErrDailyCancellationLimitExceeded)

	// ErrTooLateToCancel возвращается, когда до начала записи осталось меньше минимального срока
	ErrTooLateToCancel = fmt.Errorf("cancellation: %w", domain.ErrTooLateToCancel)

	// ErrNotCancellable возвращается для записи в терминальном статусе completed
	ErrNotCancellable = fmt.Errorf("cancellation: %w: completed appointment cannot be cancelled", domain.ErrInvalidTransition)
)
