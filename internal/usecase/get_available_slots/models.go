package get_available_slots

import "time"

// Шаг сетки окон по умолчанию и допустимые пределы, минуты
const (
	DefaultStepMinutes = 30
	MinStepMinutes     = 5
	MaxStepMinutes     = 240
)

// Request модель запроса окон на день
type Request struct {
	ServiceID   int64
	Date        time.Time // дата в часовом поясе салона
	StepMinutes int       // 0 - шаг по умолчанию
}

// Response модель ответа со списком окон
type Response struct {
	Date            time.Time
	ServiceID       int64
	DurationMinutes int
	TotalStaff      int // мастера, умеющие выполнять услугу
	Slots           []Slot
}

// Slot окно записи со свободными мастерами
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
	Staff     []Staff
}

// Staff свободный мастер
type Staff struct {
	ID   int64
	Name string
}
