package book_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	bookAppointment "github.com/m04kA/SMC-SalonBookingService/internal/usecase/book_appointment"
)

// BookAppointmentRequest HTTP request model
type BookAppointmentRequest struct {
	CustomerID    *int64 `json:"customerId,omitempty"` // только для администратора
	ServiceID     int64  `json:"serviceId"`
	StartTime     string `json:"startTime"` // RFC 3339
	PaymentMethod string `json:"paymentMethod"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BookAppointmentRequest) ToUseCaseRequest(customerID int64) (*bookAppointment.Request, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	method := domain.PaymentMethod(r.PaymentMethod)
	if method == "" {
		method = domain.PaymentOnsite
	}

	return &bookAppointment.Request{
		CustomerID:    customerID,
		ServiceID:     r.ServiceID,
		StartTime:     start,
		PaymentMethod: method,
	}, nil
}
