package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// ListRequest запрос списка записей
type ListRequest struct {
	Actor  domain.Actor
	Status *string
}

// SetStatusRequest запрос на смену статуса и/или мастера
type SetStatusRequest struct {
	AppointmentID   int64
	Actor           domain.Actor
	Status          string
	ReassignStaffID *int64
}

// RecordPaymentRequest запрос на фиксацию онлайн-оплаты
type RecordPaymentRequest struct {
	AppointmentID int64
	Actor         domain.Actor
	TransactionID string
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	StaffID    *int64 `json:"staffId"`
	ServiceID  int64  `json:"serviceId"`
	StartTime  string `json:"startTime"` // RFC 3339
	EndTime    string `json:"endTime"`
	Status     string `json:"status"`

	// Денормализованные данные услуги
	ServiceName  string `json:"serviceName"`
	ServicePrice string `json:"servicePrice"`

	PaymentMethod string  `json:"paymentMethod"`
	PaymentStatus string  `json:"paymentStatus"`
	TransactionID *string `json:"transactionId,omitempty"`
	RefundAmount  string  `json:"refundAmount"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledBy        *int64  `json:"cancelledBy,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		CustomerID:         a.CustomerID,
		StaffID:            a.StaffID,
		ServiceID:          a.ServiceID,
		StartTime:          a.StartTime.Format(time.RFC3339),
		EndTime:            a.EndTime.Format(time.RFC3339),
		Status:             string(a.Status),
		ServiceName:        a.ServiceName,
		ServicePrice:       a.ServicePrice.StringFixed(2),
		PaymentMethod:      string(a.PaymentMethod),
		PaymentStatus:      string(a.PaymentStatus),
		TransactionID:      a.TransactionID,
		RefundAmount:       a.RefundAmount.StringFixed(2),
		CancellationReason: a.CancellationReason,
		CancelledBy:        a.CancelledBy,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(list)),
	}
	for _, a := range list {
		if dto := FromDomainAppointment(a); dto != nil {
			resp.Appointments = append(resp.Appointments, *dto)
		}
	}
	return resp
}

// ToDomainStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
