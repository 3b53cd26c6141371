package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

func TestDaySlots(t *testing.T) {
	w1 := &domain.StaffMember{ID: 1, Name: "Anna", IsActive: true, ShiftStart: "09:00", ShiftEnd: "12:00"}
	w2 := &domain.StaffMember{ID: 2, Name: "Olga", IsActive: true, ShiftStart: "10:00", ShiftEnd: "12:00",
		BreakStart: ptr.Ptr(types.TimeString("11:00")), BreakEnd: ptr.Ptr(types.TimeString("11:30"))}

	busy := fakeAppointments{{
		StaffID:   ptr.Ptr(int64(1)),
		StartTime: time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC),
		Status:    domain.StatusConfirmed,
	}}

	r := NewResolver(
		fakeServices{haircut.ID: haircut},
		&fakeStaff{members: []*domain.StaffMember{w1, w2}},
		busy,
		fakeHours{hours: domain.ShopHours{Open: "09:00", Close: "12:00"}},
		Options{Location: time.UTC, HorizonMonths: 3},
		logger.NewNop(),
	)

	res, err := r.DaySlots(context.Background(), DayRequest{
		ServiceID: haircut.ID,
		Date:      time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		Step:      30 * time.Minute,
		Now:       now,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.QualifiedStaff)

	got := make(map[string][]int64, len(res.Slots))
	for _, s := range res.Slots {
		assert.NotEmpty(t, s.Staff)
		got[s.Start.Format("15:04")] = staffIDs(s.Staff)
	}
	// 09:00 и 09:30 пропущены: w1 занят, w2 еще не работает
	assert.Equal(t, map[string][]int64{
		"10:00": {1, 2}, // окно касается перерыва w2, но не пересекает его
		"10:30": {1},    // w2 на перерыве
		"11:00": {1},
	}, got)
	assert.Equal(t, "Olga", res.Slots[0].Staff[1].Name)
}

func TestDaySlots_FullyBookedDayIsEmpty(t *testing.T) {
	w1 := &domain.StaffMember{ID: 1, IsActive: true, ShiftStart: "09:00", ShiftEnd: "12:00"}
	busy := fakeAppointments{{
		StaffID:   ptr.Ptr(int64(1)),
		StartTime: time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC),
		Status:    domain.StatusConfirmed,
	}}

	r := NewResolver(
		fakeServices{haircut.ID: haircut},
		&fakeStaff{members: []*domain.StaffMember{w1}},
		busy,
		fakeHours{hours: domain.ShopHours{Open: "09:00", Close: "12:00"}},
		Options{Location: time.UTC, HorizonMonths: 3},
		logger.NewNop(),
	)

	res, err := r.DaySlots(context.Background(), DayRequest{
		ServiceID: haircut.ID,
		Date:      time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		Step:      30 * time.Minute,
		Now:       now,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.QualifiedStaff)
	assert.Empty(t, res.Slots)
}

func TestDaySlots_SkipsPastSlots(t *testing.T) {
	r := NewResolver(
		fakeServices{haircut.ID: haircut},
		&fakeStaff{members: []*domain.StaffMember{{ID: 1, IsActive: true}}},
		fakeAppointments(nil),
		fakeHours{hours: domain.DefaultShopHours()},
		Options{Location: time.UTC},
		logger.NewNop(),
	)

	res, err := r.DaySlots(context.Background(), DayRequest{
		ServiceID: haircut.ID,
		Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Step:      time.Hour,
		Now:       time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, res.Slots, 2)
	assert.Equal(t, 19, res.Slots[0].Start.Hour())
	assert.Equal(t, 20, res.Slots[1].Start.Hour())
}

func TestDaySlots_Errors(t *testing.T) {
	r := NewResolver(
		fakeServices{haircut.ID: haircut},
		&fakeStaff{members: []*domain.StaffMember{{ID: 1, IsActive: true, Skills: domain.NewSkillSet(3)}}},
		fakeAppointments(nil),
		fakeHours{hours: domain.DefaultShopHours()},
		Options{Location: time.UTC},
		logger.NewNop(),
	)
	day := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	_, err := r.DaySlots(context.Background(), DayRequest{ServiceID: haircut.ID, Date: day, Step: time.Hour, Now: now})
	assert.ErrorIs(t, err, ErrNoQualifiedStaff)

	_, err = r.DaySlots(context.Background(), DayRequest{ServiceID: 42, Date: day, Step: time.Hour, Now: now})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = r.DaySlots(context.Background(), DayRequest{ServiceID: haircut.ID, Date: day, Now: now})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
