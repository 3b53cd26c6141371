package book_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Request модель запроса на запись
type Request struct {
	CustomerID    int64
	ServiceID     int64
	StartTime     time.Time
	PaymentMethod domain.PaymentMethod
}

// Options режимы бронирования
type Options struct {
	// AllowUnassignedBooking создает запись без мастера (pending), если мастер не найден
	AllowUnassignedBooking bool
}

// Результаты для метрик
const (
	resultCreated    = "created"
	resultUnassigned = "unassigned"
	resultRejected   = "rejected"
	resultConflict   = "conflict"
	resultError      = "error"
)
