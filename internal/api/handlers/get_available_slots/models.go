package get_available_slots

import (
	"strconv"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-SalonBookingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string          `json:"date"`
	ServiceID       int64           `json:"serviceId"`
	DurationMinutes int             `json:"durationMinutes"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного окна
type AvailableSlot struct {
	StartTime      string          `json:"startTime"` // RFC 3339
	EndTime        string          `json:"endTime"`
	AvailableSpots int             `json:"availableSpots"`
	TotalSpots     int             `json:"totalSpots"`
	Staff          []StaffResponse `json:"staff"`
}

// StaffResponse свободный в окне мастер
type StaffResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		staff := make([]StaffResponse, len(slot.Staff))
		for j, s := range slot.Staff {
			staff[j] = StaffResponse{ID: s.ID, Name: s.Name}
		}
		slots[i] = AvailableSlot{
			StartTime:      slot.StartTime.Format(time.RFC3339),
			EndTime:        slot.EndTime.Format(time.RFC3339),
			AvailableSpots: len(slot.Staff),
			TotalSpots:     resp.TotalStaff,
			Staff:          staff,
		}
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		ServiceID:       resp.ServiceID,
		DurationMinutes: resp.DurationMinutes,
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(serviceID int64, dateStr, stepStr string) (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	step := 0
	if stepStr != "" {
		if step, err = strconv.Atoi(stepStr); err != nil {
			return nil, err
		}
	}

	return &getAvailableSlots.Request{
		ServiceID:   serviceID,
		Date:        date,
		StepMinutes: step,
	}, nil
}
