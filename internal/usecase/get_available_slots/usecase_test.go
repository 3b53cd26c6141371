package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
)

type stubResolver struct {
	got availability.DayRequest
	res *availability.DayResult
	err error
}

func (s *stubResolver) DaySlots(_ context.Context, req availability.DayRequest) (*availability.DayResult, error) {
	s.got = req
	return s.res, s.err
}

type fixedTime time.Time

func (f fixedTime) Now() time.Time { return time.Time(f) }

func TestExecute(t *testing.T) {
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	stub := &stubResolver{res: &availability.DayResult{
		Service:        &domain.Service{ID: 1, Price: decimal.NewFromInt(10), DurationMinutes: 60},
		QualifiedStaff: 3,
		Slots: []availability.Slot{
			{
				Start: day.Add(9 * time.Hour),
				End:   day.Add(10 * time.Hour),
				Staff: []*domain.StaffMember{{ID: 4, Name: "Anna"}, {ID: 7, Name: "Olga"}},
			},
		},
	}}
	uc := NewUseCase(stub, logger.NewNop())
	uc.timeProvider = fixedTime(day)

	resp, err := uc.Execute(context.Background(), &Request{ServiceID: 1, Date: day})
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, stub.got.Step)
	assert.True(t, stub.got.Now.Equal(day))
	assert.Equal(t, 3, resp.TotalStaff)
	assert.Equal(t, 60, resp.DurationMinutes)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, []Staff{{ID: 4, Name: "Anna"}, {ID: 7, Name: "Olga"}}, resp.Slots[0].Staff)
}

func TestExecute_Validation(t *testing.T) {
	uc := NewUseCase(&stubResolver{}, logger.NewNop())
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	for _, req := range []*Request{
		{ServiceID: 0, Date: day},
		{ServiceID: 1},
		{ServiceID: 1, Date: day, StepMinutes: 1},
		{ServiceID: 1, Date: day, StepMinutes: 600},
	} {
		_, err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestExecute_PassesSchedulingErrors(t *testing.T) {
	uc := NewUseCase(&stubResolver{err: availability.ErrNoQualifiedStaff}, logger.NewNop())

	_, err := uc.Execute(context.Background(), &Request{ServiceID: 1, Date: time.Now()})
	assert.ErrorIs(t, err, domain.ErrNoQualifiedStaff)

	uc = NewUseCase(&stubResolver{err: availability.ErrInternal}, logger.NewNop())
	_, err = uc.Execute(context.Background(), &Request{ServiceID: 1, Date: time.Now()})
	assert.ErrorIs(t, err, ErrInternal)
}
