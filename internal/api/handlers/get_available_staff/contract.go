package get_available_staff

import (
	"context"

	getAvailableStaff "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_staff"
)

type GetAvailableStaffUseCase interface {
	Execute(ctx context.Context, req *getAvailableStaff.Request) (*getAvailableStaff.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
