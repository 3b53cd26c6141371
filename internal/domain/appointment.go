package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus статус записи
type AppointmentStatus string

const (
	// StatusPending запись без подтвержденного мастера (ручное создание, режим без назначения)
	StatusPending AppointmentStatus = "pending"
	// StatusConfirmed начальный статус обычной записи
	StatusConfirmed AppointmentStatus = "confirmed"
	// StatusCompleted услуга оказана (терминальный)
	StatusCompleted AppointmentStatus = "completed"
	// StatusCancelled запись отменена (терминальный)
	StatusCancelled AppointmentStatus = "cancelled"
)

// PaymentMethod способ оплаты
type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentOnsite PaymentMethod = "onsite"
)

// PaymentStatus статус оплаты
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Appointment запись клиента на услугу
type Appointment struct {
	ID         int64
	CustomerID int64
	StaffID    *int64 // nil, пока мастер не назначен
	ServiceID  int64
	StartTime  time.Time
	EndTime    time.Time // StartTime + длительность услуги, не меняется после создания
	Status     AppointmentStatus

	// Денормализованные данные услуги на момент записи
	ServiceName  string
	ServicePrice decimal.Decimal

	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	TransactionID   *string // ссылка на платеж во внешней системе
	RefundAmount    decimal.Decimal
	RefundReference *string

	CancellationReason *string
	CancelledBy        *int64
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive возвращает true для записей, которые занимают время мастера
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// IsCancelled возвращает true для отмененной записи
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// IsAssignedTo проверяет, что запись назначена мастеру staffID
func (a *Appointment) IsAssignedTo(staffID int64) bool {
	return a.StaffID != nil && *a.StaffID == staffID
}

// IsPaidOnline возвращает true, если запись оплачена онлайн (и возможен возврат)
func (a *Appointment) IsPaidOnline() bool {
	return a.PaymentMethod == PaymentOnline && a.PaymentStatus == PaymentPaid
}

// Duration длительность записи
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// allowedTransitions допустимые переходы статусов
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition проверяет допустимость перехода from -> to
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValid проверяет, что статус известен
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsValid проверяет, что способ оплаты известен
func (m PaymentMethod) IsValid() bool {
	return m == PaymentOnline || m == PaymentOnsite
}

// AppointmentsFilter фильтр списка записей
type AppointmentsFilter struct {
	CustomerID *int64             // только записи клиента
	StaffID    *int64             // только записи мастера
	Status     *AppointmentStatus // фильтр по статусу
}
