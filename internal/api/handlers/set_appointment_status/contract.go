package set_appointment_status

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
)

type AppointmentService interface {
	SetStatus(ctx context.Context, req *models.SetStatusRequest) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
