package get_available_staff

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability"
)

// UseCase use case для просмотра свободных мастеров без бронирования
type UseCase struct {
	resolver     AvailabilityResolver
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(resolver AvailabilityResolver, logger Logger) *UseCase {
	return &UseCase{
		resolver:     resolver,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute возвращает мастеров, свободных на [start, start+длительность услуги).
// Строки не блокируются: результат может устареть к моменту записи.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableStaff: service=%d, start=%s", req.ServiceID, req.StartTime.Format(time.RFC3339))

	if req.ServiceID <= 0 {
		uc.logger.Warn("GetAvailableStaff: invalid service id=%d", req.ServiceID)
		return nil, fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	res, err := uc.resolver.Resolve(ctx, availability.Request{
		ServiceID: req.ServiceID,
		Start:     req.StartTime,
		Now:       uc.timeProvider.Now(),
	})
	if err != nil {
		if errors.Is(err, availability.ErrInternal) {
			uc.logger.Error("GetAvailableStaff: resolve failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		uc.logger.Warn("GetAvailableStaff: %v", err)
		return nil, err
	}

	staff := make([]Staff, len(res.Available))
	for i, m := range res.Available {
		staff[i] = Staff{ID: m.ID, Name: m.Name}
	}

	return &Response{
		ServiceID: res.Service.ID,
		StartTime: res.Start,
		EndTime:   res.End,
		Staff:     staff,
	}, nil
}
