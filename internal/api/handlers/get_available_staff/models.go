package get_available_staff

import (
	"time"

	getAvailableStaff "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_staff"
)

// StaffResponse свободный мастер
type StaffResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AvailableStaffResponse HTTP response model
type AvailableStaffResponse struct {
	ServiceID int64           `json:"serviceId"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime"`
	Staff     []StaffResponse `json:"staff"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableStaff.Response) *AvailableStaffResponse {
	staff := make([]StaffResponse, 0, len(resp.Staff))
	for _, s := range resp.Staff {
		staff = append(staff, StaffResponse{ID: s.ID, Name: s.Name})
	}
	return &AvailableStaffResponse{
		ServiceID: resp.ServiceID,
		StartTime: resp.StartTime.Format(time.RFC3339),
		EndTime:   resp.EndTime.Format(time.RFC3339),
		Staff:     staff,
	}
}
