package availability

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	catalogRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SalonBookingService/pkg/timeutil"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// Resolver определяет, какие мастера могут выполнить услугу в запрошенное время
type Resolver struct {
	services      ServiceRepository
	staff         StaffRepository
	appointments  AppointmentRepository
	shopHours     ShopHoursProvider
	location      *time.Location
	horizonMonths int
	random        RandomSource
	logger        Logger
}

// NewResolver создает новый экземпляр резолвера
func NewResolver(
	services ServiceRepository,
	staff StaffRepository,
	appointments AppointmentRepository,
	shopHours ShopHoursProvider,
	opts Options,
	logger Logger,
) *Resolver {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.HorizonMonths <= 0 {
		opts.HorizonMonths = domain.DefaultBookingHorizonMonths
	}
	if opts.Random == nil {
		opts.Random = globalRandom{}
	}

	return &Resolver{
		services:      services,
		staff:         staff,
		appointments:  appointments,
		shopHours:     shopHours,
		location:      opts.Location,
		horizonMonths: opts.HorizonMonths,
		random:        opts.Random,
		logger:        logger,
	}
}

// Resolve возвращает мастеров, свободных на [start, start+duration).
// С req.Lock строки кандидатов блокируются, поэтому вызывать нужно внутри транзакции,
// в которой потом создается запись.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	// 1. Время начала и горизонт
	if err := r.validateStart(req.Start, req.Now); err != nil {
		return nil, err
	}

	// 2. Услуга и конец интервала
	service, err := r.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			r.logger.Warn("Resolve: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		r.logger.Error("Resolve: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.DurationMinutes <= 0 {
		r.logger.Error("Resolve: service id=%d has non-positive duration %d", service.ID, service.DurationMinutes)
		return nil, fmt.Errorf("%w: service id=%d has invalid duration", ErrInternal, service.ID)
	}

	start := req.Start
	end := start.Add(service.Duration())
	startTOD := types.NewTimeString(start.In(r.location))
	endTOD := types.NewTimeString(end.In(r.location))

	// 3. Часы работы салона
	hours, err := r.shopHours.GetShopHours(ctx)
	if err != nil {
		r.logger.Error("Resolve: failed to get shop hours: %v", err)
		return nil, fmt.Errorf("%w: failed to get shop hours: %v", ErrInternal, err)
	}
	if !timeutil.InRange(startTOD, hours.Open, hours.Close) || !timeutil.InRange(endTOD, hours.Open, hours.Close) {
		r.logger.Warn("Resolve: %s-%s is outside shop hours %s-%s", startTOD, endTOD, hours.Open, hours.Close)
		return nil, ErrOutsideBusinessHours
	}

	// 4. Квалификация, смена и перерыв
	workers, err := r.staff.ListActiveWorkers(ctx)
	if err != nil {
		r.logger.Error("Resolve: failed to list staff: %v", err)
		return nil, fmt.Errorf("%w: failed to list staff: %v", ErrInternal, err)
	}

	qualified := qualifiedFor(workers, service.ID)
	if len(qualified) == 0 {
		r.logger.Warn("Resolve: no staff qualified for service id=%d", service.ID)
		return nil, ErrNoQualifiedStaff
	}

	candidates := onShift(qualified, startTOD, endTOD)
	if len(candidates) == 0 {
		r.logger.Warn("Resolve: %d qualified staff, none on shift for %s-%s", len(qualified), startTOD, endTOD)
		return nil, ErrNoStaffAvailable
	}

	// 5. Блокировка кандидатов и проверка пересечений по полным меткам времени
	ids := staffIDs(candidates)
	if req.Lock {
		if err := r.staff.LockByIDs(ctx, ids); err != nil {
			if txmanager.IsConflictError(err) {
				r.logger.Warn("Resolve: lost lock race for staff %v: %v", ids, err)
				return nil, fmt.Errorf("%w: lock staff: %v", ErrConcurrencyConflict, err)
			}
			r.logger.Error("Resolve: failed to lock staff %v: %v", ids, err)
			return nil, fmt.Errorf("%w: failed to lock staff: %v", ErrInternal, err)
		}
	}

	existing, err := r.appointments.ListActiveByStaffInRange(ctx, ids, start, end)
	if err != nil {
		if txmanager.IsConflictError(err) {
			r.logger.Warn("Resolve: conflict while listing appointments: %v", err)
			return nil, fmt.Errorf("%w: list appointments: %v", ErrConcurrencyConflict, err)
		}
		r.logger.Error("Resolve: failed to list appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	available := freeOf(candidates, existing, start, end)

	// 6. Никого нет
	if len(available) == 0 {
		r.logger.Warn("Resolve: all %d candidates are busy for %s - %s", len(candidates),
			start.Format(time.RFC3339), end.Format(time.RFC3339))
		return nil, ErrNoStaffAvailable
	}

	r.logger.Info("Resolve: service id=%d, %s - %s: %d/%d staff available",
		service.ID, start.Format(time.RFC3339), end.Format(time.RFC3339), len(available), len(qualified))

	return &Result{
		Service:   service,
		Start:     start,
		End:       end,
		Available: available,
	}, nil
}

// Pick выбирает мастера равновероятно
func (r *Resolver) Pick(available []*domain.StaffMember) *domain.StaffMember {
	if len(available) == 0 {
		return nil
	}
	return available[r.random.IntN(len(available))]
}

// qualifiedFor мастера, которые умеют выполнять услугу
func qualifiedFor(workers []*domain.StaffMember, serviceID int64) []*domain.StaffMember {
	result := make([]*domain.StaffMember, 0, len(workers))
	for _, w := range workers {
		if w.IsQualifiedFor(serviceID) {
			result = append(result, w)
		}
	}
	return result
}

// onShift мастера, у которых интервал внутри смены и не задевает перерыв
func onShift(members []*domain.StaffMember, startTOD, endTOD types.TimeString) []*domain.StaffMember {
	result := make([]*domain.StaffMember, 0, len(members))
	for _, m := range members {
		if !m.ShiftContains(startTOD, endTOD) || m.BreakOverlaps(startTOD, endTOD) {
			continue
		}
		result = append(result, m)
	}
	return result
}

// freeOf мастера без активных записей, пересекающих [start, end)
func freeOf(members []*domain.StaffMember, existing []*domain.Appointment, start, end time.Time) []*domain.StaffMember {
	busy := make(map[int64]struct{}, len(existing))
	for _, a := range existing {
		if a.StaffID == nil || !a.IsActive() {
			continue
		}
		if timeutil.Overlaps(start, end, a.StartTime, a.EndTime) {
			busy[*a.StaffID] = struct{}{}
		}
	}

	result := make([]*domain.StaffMember, 0, len(members))
	for _, m := range members {
		if _, ok := busy[m.ID]; !ok {
			result = append(result, m)
		}
	}
	return result
}

func staffIDs(members []*domain.StaffMember) []int64 {
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}
