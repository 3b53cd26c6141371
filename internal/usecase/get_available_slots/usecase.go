package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability"
)

// UseCase use case для получения окон записи на день
type UseCase struct {
	resolver     SlotsResolver
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(resolver SlotsResolver, logger Logger) *UseCase {
	return &UseCase{
		resolver:     resolver,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute возвращает окна на дату, в которых свободен хотя бы один мастер
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: service=%d, date=%s, step=%d",
		req.ServiceID, req.Date.Format(domain.DateFormat), req.StepMinutes)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	step := req.StepMinutes
	if step == 0 {
		step = DefaultStepMinutes
	}

	// 2. Расчет окон
	res, err := uc.resolver.DaySlots(ctx, availability.DayRequest{
		ServiceID: req.ServiceID,
		Date:      req.Date,
		Step:      time.Duration(step) * time.Minute,
		Now:       uc.timeProvider.Now(),
	})
	if err != nil {
		if errors.Is(err, availability.ErrInternal) {
			uc.logger.Error("GetAvailableSlots: failed to compute slots: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		uc.logger.Warn("GetAvailableSlots: %v", err)
		return nil, err
	}

	slots := make([]Slot, len(res.Slots))
	for i, s := range res.Slots {
		staff := make([]Staff, len(s.Staff))
		for j, m := range s.Staff {
			staff[j] = Staff{ID: m.ID, Name: m.Name}
		}
		slots[i] = Slot{
			StartTime: s.Start,
			EndTime:   s.End,
			Staff:     staff,
		}
	}

	return &Response{
		Date:            req.Date,
		ServiceID:       res.Service.ID,
		DurationMinutes: res.Service.DurationMinutes,
		TotalStaff:      res.QualifiedStaff,
		Slots:           slots,
	}, nil
}
