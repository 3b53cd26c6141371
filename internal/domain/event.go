package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы событий записи
const (
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentCancelled     = "appointment.cancelled"
	EventAppointmentStatusChanged = "appointment.status_changed"
)

// OutboxEvent событие, сохраняемое в той же транзакции, что и изменение записи
type OutboxEvent struct {
	ID          uuid.UUID
	AggregateID int64
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// AppointmentEventPayload тело события записи
type AppointmentEventPayload struct {
	AppointmentID int64             `json:"appointmentId"`
	CustomerID    int64             `json:"customerId"`
	StaffID       *int64            `json:"staffId,omitempty"`
	ServiceID     int64             `json:"serviceId"`
	StartTime     time.Time         `json:"startTime"`
	EndTime       time.Time         `json:"endTime"`
	Status        AppointmentStatus `json:"status"`
	PaymentStatus PaymentStatus     `json:"paymentStatus"`
	RefundAmount  string            `json:"refundAmount"`
	ActorID       int64             `json:"actorId"`
}

// NewAppointmentEvent строит событие по состоянию записи
func NewAppointmentEvent(eventType string, a *Appointment, actorID int64, now time.Time) (*OutboxEvent, error) {
	payload, err := json.Marshal(AppointmentEventPayload{
		AppointmentID: a.ID,
		CustomerID:    a.CustomerID,
		StaffID:       a.StaffID,
		ServiceID:     a.ServiceID,
		StartTime:     a.StartTime.UTC(),
		EndTime:       a.EndTime.UTC(),
		Status:        a.Status,
		PaymentStatus: a.PaymentStatus,
		RefundAmount:  a.RefundAmount.StringFixed(2),
		ActorID:       actorID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return &OutboxEvent{
		ID:          uuid.New(),
		AggregateID: a.ID,
		EventType:   eventType,
		Payload:     payload,
		CreatedAt:   now,
	}, nil
}
