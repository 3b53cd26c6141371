package record_payment

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
)

type AppointmentService interface {
	RecordPayment(ctx context.Context, req *models.RecordPaymentRequest) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
