package get_available_staff

import "time"

// Request модель запроса свободных мастеров
type Request struct {
	ServiceID int64
	StartTime time.Time
}

// Response свободные мастера на интервал
type Response struct {
	ServiceID int64
	StartTime time.Time
	EndTime   time.Time
	Staff     []Staff
}

// Staff мастер в ответе
type Staff struct {
	ID   int64
	Name string
}
