package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

func TestCanTransition(t *testing.T) {
	statuses := []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
	allowed := map[[2]AppointmentStatus]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]AppointmentStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestAppointment_Predicates(t *testing.T) {
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	a := &Appointment{
		StaffID:       ptr.Ptr(int64(7)),
		Status:        StatusConfirmed,
		StartTime:     start,
		EndTime:       start.Add(45 * time.Minute),
		PaymentMethod: PaymentOnline,
		PaymentStatus: PaymentPaid,
	}

	assert.True(t, a.IsActive())
	assert.False(t, a.IsCancelled())
	assert.True(t, a.IsAssignedTo(7))
	assert.False(t, a.IsAssignedTo(8))
	assert.True(t, a.IsPaidOnline())
	assert.Equal(t, 45*time.Minute, a.Duration())

	a.Status = StatusCancelled
	assert.False(t, a.IsActive())

	a.StaffID = nil
	assert.False(t, a.IsAssignedTo(7))

	a.PaymentMethod = PaymentOnsite
	assert.False(t, a.IsPaidOnline())
}

func TestStatusAndMethodValidation(t *testing.T) {
	assert.True(t, StatusCompleted.IsValid())
	assert.False(t, AppointmentStatus("in_progress").IsValid())
	assert.True(t, PaymentOnsite.IsValid())
	assert.False(t, PaymentMethod("crypto").IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("manager").IsValid())
}
