package get_appointment

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
)

type AppointmentService interface {
	GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.AppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
