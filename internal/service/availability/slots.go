package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SalonBookingService/pkg/timeutil"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// DaySlots строит окна на дату с шагом req.Step от открытия салона.
// Данные читаются один раз, каждое окно проверяется теми же правилами, что и Resolve.
// Возвращаются только окна, где свободен хотя бы один мастер; окна в прошлом
// и за горизонтом бронирования пропускаются.
func (r *Resolver) DaySlots(ctx context.Context, req DayRequest) (*DayResult, error) {
	if req.Step <= 0 {
		return nil, fmt.Errorf("%w: step must be positive", ErrInvalidStartTime)
	}

	service, err := r.services.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			r.logger.Warn("DaySlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		r.logger.Error("DaySlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if service.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: service id=%d has invalid duration", ErrInternal, service.ID)
	}

	hours, err := r.shopHours.GetShopHours(ctx)
	if err != nil {
		r.logger.Error("DaySlots: failed to get shop hours: %v", err)
		return nil, fmt.Errorf("%w: failed to get shop hours: %v", ErrInternal, err)
	}

	workers, err := r.staff.ListActiveWorkers(ctx)
	if err != nil {
		r.logger.Error("DaySlots: failed to list staff: %v", err)
		return nil, fmt.Errorf("%w: failed to list staff: %v", ErrInternal, err)
	}

	qualified := qualifiedFor(workers, service.ID)
	if len(qualified) == 0 {
		r.logger.Warn("DaySlots: no staff qualified for service id=%d", service.ID)
		return nil, ErrNoQualifiedStaff
	}

	// Рабочий день салона; если закрытие раньше открытия, день переходит через полночь
	y, m, d := req.Date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, r.location)
	open := midnight.Add(time.Duration(hours.Open.Minutes()) * time.Minute)
	closing := midnight.Add(time.Duration(hours.Close.Minutes()) * time.Minute)
	if !closing.After(open) {
		closing = closing.Add(24 * time.Hour)
	}

	existing, err := r.appointments.ListActiveByStaffInRange(ctx, staffIDs(qualified), open, closing)
	if err != nil {
		r.logger.Error("DaySlots: failed to list appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	duration := service.Duration()
	slots := make([]Slot, 0)
	for start := open; !start.Add(duration).After(closing); start = start.Add(req.Step) {
		if r.validateStart(start, req.Now) != nil {
			continue
		}

		end := start.Add(duration)
		startTOD := types.NewTimeString(start.In(r.location))
		endTOD := types.NewTimeString(end.In(r.location))
		if !timeutil.InRange(startTOD, hours.Open, hours.Close) || !timeutil.InRange(endTOD, hours.Open, hours.Close) {
			continue
		}

		free := freeOf(onShift(qualified, startTOD, endTOD), existing, start, end)
		if len(free) == 0 {
			continue
		}
		slots = append(slots, Slot{
			Start: start,
			End:   end,
			Staff: free,
		})
	}

	r.logger.Info("DaySlots: service id=%d, date=%s: %d slots", service.ID, midnight.Format("2006-01-02"), len(slots))

	return &DayResult{
		Service:        service,
		QualifiedStaff: len(qualified),
		Slots:          slots,
	}, nil
}
