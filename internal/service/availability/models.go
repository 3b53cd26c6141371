package availability

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request запрос на поиск свободных мастеров
type Request struct {
	ServiceID int64
	Start     time.Time
	Now       time.Time
	// Lock блокирует строки кандидатов до конца транзакции (для бронирования)
	Lock bool
}

// Result свободные мастера на интервал [Start, End)
type Result struct {
	Service   *domain.Service
	Start     time.Time
	End       time.Time
	Available []*domain.StaffMember
}

// Options параметры резолвера
type Options struct {
	Location      *time.Location // часовой пояс салона
	HorizonMonths int            // горизонт бронирования в календарных месяцах
	Random        RandomSource   // nil - глобальный генератор
}

// DayRequest запрос окон на день
type DayRequest struct {
	ServiceID int64
	Date      time.Time // учитываются только год, месяц и день
	Step      time.Duration
	Now       time.Time
}

// Slot окно [Start, End) и свободные в нем мастера (не пусто)
type Slot struct {
	Start time.Time
	End   time.Time
	Staff []*domain.StaffMember
}

// DayResult окна на день
type DayResult struct {
	Service        *domain.Service
	QualifiedStaff int
	Slots          []Slot
}
