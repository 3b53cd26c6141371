package availability

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SalonBookingService/pkg/logger"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

type fakeServices map[int64]*domain.Service

func (f fakeServices) GetByID(_ context.Context, id int64) (*domain.Service, error) {
	if s, ok := f[id]; ok {
		return s, nil
	}
	return nil, catalogRepo.ErrServiceNotFound
}

type fakeStaff struct {
	members []*domain.StaffMember
	locked  []int64
	lockErr error
}

func (f *fakeStaff) ListActiveWorkers(context.Context) ([]*domain.StaffMember, error) {
	return f.members, nil
}

func (f *fakeStaff) LockByIDs(_ context.Context, ids []int64) error {
	if f.lockErr != nil {
		return f.lockErr
	}
	f.locked = append(f.locked, ids...)
	return nil
}

type fakeAppointments []*domain.Appointment

func (f fakeAppointments) ListActiveByStaffInRange(_ context.Context, ids []int64, _, _ time.Time) ([]*domain.Appointment, error) {
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	result := make([]*domain.Appointment, 0)
	for _, a := range f {
		if a.StaffID != nil && wanted[*a.StaffID] {
			result = append(result, a)
		}
	}
	return result, nil
}

type fakeHours struct {
	hours domain.ShopHours
	err   error
}

func (f fakeHours) GetShopHours(context.Context) (domain.ShopHours, error) {
	return f.hours, f.err
}

type fixedRandom int

func (f fixedRandom) IntN(n int) int {
	return int(f) % n
}

var (
	now = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	haircut  = &domain.Service{ID: 1, Name: "Haircut", Price: decimal.NewFromInt(100), DurationMinutes: 60}
	manicure = &domain.Service{ID: 3, Name: "Manicure", Price: decimal.NewFromInt(50), DurationMinutes: 45}
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 11, hour, minute, 0, 0, time.UTC)
}

func worker(id int64, skills ...int64) *domain.StaffMember {
	return &domain.StaffMember{
		ID:         id,
		Name:       "worker",
		IsActive:   true,
		Skills:     domain.NewSkillSet(skills...),
		ShiftStart: "09:00",
		ShiftEnd:   "21:00",
	}
}

func newResolver(staff *fakeStaff, appointments fakeAppointments) *Resolver {
	return NewResolver(
		fakeServices{haircut.ID: haircut, manicure.ID: manicure},
		staff,
		appointments,
		fakeHours{hours: domain.DefaultShopHours()},
		Options{Location: time.UTC, HorizonMonths: 3, Random: fixedRandom(0)},
		logger.NewNop(),
	)
}

func TestResolve_ComputesEndFromDuration(t *testing.T) {
	r := newResolver(&fakeStaff{members: []*domain.StaffMember{worker(1)}}, nil)

	res, err := r.Resolve(context.Background(), Request{ServiceID: manicure.ID, Start: at(10, 0), Now: now})
	require.NoError(t, err)

	assert.Equal(t, at(10, 45), res.End)
	assert.Equal(t, manicure, res.Service)
	require.Len(t, res.Available, 1)
}

func TestResolve_ShiftAndBreak(t *testing.T) {
	member := worker(1)
	member.ShiftEnd = "17:00"
	member.BreakStart = ptr.Ptr(types.TimeString("13:00"))
	member.BreakEnd = ptr.Ptr(types.TimeString("14:00"))
	r := newResolver(&fakeStaff{members: []*domain.StaffMember{member}}, nil)

	// 13:30-14:15 пересекается с перерывом
	_, err := r.Resolve(context.Background(), Request{ServiceID: manicure.ID, Start: at(13, 30), Now: now})
	assert.ErrorIs(t, err, ErrNoStaffAvailable)

	// 09:00-09:45 внутри смены
	res, err := r.Resolve(context.Background(), Request{ServiceID: manicure.ID, Start: at(9, 0), Now: now})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Available[0].ID)

	// 16:30-17:15 выходит за смену
	_, err = r.Resolve(context.Background(), Request{ServiceID: manicure.ID, Start: at(16, 30), Now: now})
	assert.ErrorIs(t, err, ErrNoStaffAvailable)
}

func TestResolve_LegacySkillRule(t *testing.T) {
	generalist := worker(1)
	specialist := worker(2, 1, 2)

	r := newResolver(&fakeStaff{members: []*domain.StaffMember{generalist, specialist}}, nil)
	res, err := r.Resolve(context.Background(), Request{ServiceID: manicure.ID, Start: at(10, 0), Now: now})
	require.NoError(t, err)
	require.Len(t, res.Available, 1)
	assert.Equal(t, int64(1), res.Available[0].ID)

	r = newResolver(&fakeStaff{members: []*domain.StaffMember{specialist}}, nil)
	_, err = r.Resolve(context.Background(), Request{ServiceID: manicure.ID, Start: at(10, 0), Now: now})
	assert.ErrorIs(t, err, ErrNoQualifiedStaff)
	assert.ErrorIs(t, err, domain.ErrNoQualifiedStaff)
}

func TestResolve_BusinessHoursBoundary(t *testing.T) {
	r := newResolver(&fakeStaff{members: []*domain.StaffMember{worker(1)}}, nil)

	_, err := r.Resolve(context.Background(), Request{ServiceID: haircut.ID, Start: at(20, 30), Now: now})
	assert.ErrorIs(t, err, ErrOutsideBusinessHours)
	assert.ErrorIs(t, err, domain.ErrOutsideBusinessHours)

	res, err := r.Resolve(context.Background(), Request{ServiceID: haircut.ID, Start: at(20, 0), Now: now})
	require.NoError(t, err)
	assert.Equal(t, at(21, 0), res.End)

	_, err = r.Resolve(context.Background(), Request{ServiceID: haircut.ID, Start: at(8, 30), Now: now})
	assert.ErrorIs(t, err, ErrOutsideBusinessHours)
}

func TestResolve_UsesShopLocation(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	r := NewResolver(
		fakeServices{haircut.ID: haircut},
		&fakeStaff{members: []*domain.StaffMember{worker(1)}},
		fakeAppointments(nil),
		fakeHours{hours: domain.DefaultShopHours()},
		Options{Location: msk, HorizonMonths: 3},
		logger.NewNop(),
	)

	// 06:00 UTC = 09:00 MSK
	_, err := r.Resolve(context.Background(), Request{ServiceID: haircut.ID, Start: at(6, 0), Now: now.Add(-3 * time.Hour)})
	require.NoError(t, err)

	// 19:00 UTC = 22:00 MSK
	_, err = r.Resolve(context.Background(), Request{ServiceID: haircut.ID, Start: at(19, 0), Now: now})
	assert.ErrorIs(t, err, ErrOutsideBusinessHours)
}

func TestResolve_StartValidation(t *testing.T) {
	r := newResolver(&fakeStaff{members: []*domain.StaffMember{worker(1)}}, nil)
	ctx := context.Background()

	_, err := r.Resolve(ctx, Request{ServiceID: haircut.ID, Now: now})
	assert.ErrorIs(t, err, ErrInvalidStartTime)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = r.Resolve(ctx, Request{ServiceID: haircut.ID, Start: now.Add(-time.Minute), Now: now})
	assert.ErrorIs(t, err, ErrStartTimeInPast)

	horizon := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	morning := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	_, err = r.Resolve(ctx, Request{ServiceID: haircut.ID, Start: horizon, Now: morning})
	assert.NoError(t, err, "horizon boundary is inclusive")

	_, err = r.Resolve(ctx, Request{ServiceID: haircut.ID, Start: horizon.Add(time.Minute), Now: morning})
	assert.ErrorIs(t, err, ErrBeyondBookingHorizon)
}

func TestHorizon_MonthOverflowRollsOver(t *testing.T) {
	r := newResolver(&fakeStaff{}, nil)
	jan31 := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), r.Horizon(jan31))
}

func TestResolve_ServiceNotFound(t *testing.T) {
	r := newResolver(&fakeStaff{members: []*domain.StaffMember{worker(1)}}, nil)

	_, err := r.Resolve(context.Background(), Request{ServiceID: 999, Start: at(10, 0), Now: now})
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolve_ShopHoursError(t *testing.T) {
	r := NewResolver(
		fakeServices{haircut.ID: haircut},
		&fakeStaff{members: []*domain.StaffMember{worker(1)}},
		fakeAppointments(nil),
		fakeHours{err: errors.New("db down")},
		Options{},
		logger.NewNop(),
	)

	_, err := r.Resolve(context.Background(), Request{ServiceID: haircut.ID, Start: at(10, 0), Now: now})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestResolve_Conflicts(t *testing.T) {
	busy := &domain.Appointment{StaffID: ptr.Ptr(int64(1)), Status: domain.StatusConfirmed, StartTime: at(10, 30), EndTime: at(11, 30)}
	touching := &domain.Appointment{StaffID: ptr.Ptr(int64(2)), Status: domain.StatusConfirmed, StartTime: at(9, 0), EndTime: at(10, 0)}
	cancelled := &domain.Appointment{StaffID: ptr.Ptr(int64(3)), Status: domain.StatusCancelled, StartTime: at(10, 0), EndTime: at(11, 0)}
	otherDay := &domain.Appointment{StaffID: ptr.Ptr(int64(4)), Status: domain.StatusConfirmed,
		StartTime: at(10, 0).AddDate(0, 0, 1), EndTime: at(11, 0).AddDate(0, 0, 1)}

	staff := &fakeStaff{members: []*domain.StaffMember{worker(1), worker(2), worker(3), worker(4)}}
	r := newResolver(staff, fakeAppointments{busy, touching, cancelled, otherDay})

	res, err := r.Resolve(context.Background(), Request{ServiceID: haircut.ID, Start: at(10, 0), Now: now, Lock: true})
	require.NoError(t, err)

	ids := staffIDs(res.Available)
	assert.ElementsMatch(t, []int64{2, 3, 4}, ids)
	assert.ElementsMatch(t, []int64{1, 2, 3, 4}, staff.locked)
}

func TestResolve_AllBusy(t *testing.T) {
	busy := &domain.Appointment{StaffID: ptr.Ptr(int64(1)), Status: domain.StatusPending, StartTime: at(9, 30), EndTime: at(10, 30)}
	r := newResolver(&fakeStaff{members: []*domain.StaffMember{worker(1)}}, fakeAppointments{busy})

	_, err := r.Resolve(context.Background(), Request{ServiceID: haircut.ID, Start: at(10, 0), Now: now})
	assert.ErrorIs(t, err, ErrNoStaffAvailable)
	assert.ErrorIs(t, err, domain.ErrNoStaffAvailable)
}

func TestResolve_LockErrors(t *testing.T) {
	tests := []struct {
		name         string
		lockErr      error
		wantConflict bool
	}{
		{
			name:         "deadlock from repository",
			lockErr:      fmt.Errorf("%w: LockByIDs - execute query: %v", txmanager.ErrConcurrencyConflict, &pq.Error{Code: "40P01"}),
			wantConflict: true,
		},
		{
			name:         "raw serialization failure",
			lockErr:      fmt.Errorf("lock: %w", &pq.Error{Code: "40001"}),
			wantConflict: true,
		},
		{
			name:         "connection lost",
			lockErr:      errors.New("connection reset by peer"),
			wantConflict: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(&fakeStaff{members: []*domain.StaffMember{worker(1)}, lockErr: tt.lockErr}, nil)

			_, err := r.Resolve(context.Background(), Request{ServiceID: haircut.ID, Start: at(10, 0), Now: now, Lock: true})
			require.Error(t, err)
			assert.Equal(t, tt.wantConflict, errors.Is(err, domain.ErrConcurrencyConflict))
			assert.Equal(t, !tt.wantConflict, errors.Is(err, ErrInternal))
		})
	}
}

func TestResolve_NoLockOutsideBooking(t *testing.T) {
	staff := &fakeStaff{members: []*domain.StaffMember{worker(1)}}
	r := newResolver(staff, nil)

	_, err := r.Resolve(context.Background(), Request{ServiceID: haircut.ID, Start: at(10, 0), Now: now})
	require.NoError(t, err)
	assert.Empty(t, staff.locked)
}

func TestPick_UsesRandomSource(t *testing.T) {
	r := newResolver(&fakeStaff{}, nil)
	members := []*domain.StaffMember{worker(1), worker(2), worker(3)}

	r.random = fixedRandom(2)
	assert.Equal(t, int64(3), r.Pick(members).ID)

	r.random = fixedRandom(4)
	assert.Equal(t, int64(2), r.Pick(members).ID)

	assert.Nil(t, r.Pick(nil))
}

func TestPick_IsRoughlyUniform(t *testing.T) {
	r := newResolver(&fakeStaff{}, nil)
	r.random = rand.New(rand.NewPCG(42, 7))
	members := []*domain.StaffMember{worker(1), worker(2), worker(3)}

	counts := make(map[int64]int)
	for i := 0; i < 3000; i++ {
		counts[r.Pick(members).ID]++
	}

	for id, c := range counts {
		assert.InDelta(t, 1000, c, 150, "staff id=%d picked %d times", id, c)
	}
	assert.Len(t, counts, 3)
}
