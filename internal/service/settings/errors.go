package settings

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrAccessDenied возвращается, когда настройки меняет не администратор
	ErrAccessDenied = fmt.Errorf("%w: only admin can change settings", domain.ErrForbidden)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid setting", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("settings.service: internal error")
)
