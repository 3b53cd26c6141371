package book_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

const maxAttempts = 2

var tracer = otel.Tracer("github.com/m04kA/SMC-SalonBookingService/internal/usecase/book_appointment")

// UseCase use case для записи клиента с автоматическим назначением мастера
type UseCase struct {
	resolver        AvailabilityResolver
	serviceRepo     ServiceRepository
	appointmentRepo AppointmentRepository
	outboxRepo      OutboxRepository
	txManager       TransactionManager
	metrics         Metrics
	opts            Options
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	resolver AvailabilityResolver,
	serviceRepo ServiceRepository,
	appointmentRepo AppointmentRepository,
	outboxRepo OutboxRepository,
	txManager TransactionManager,
	metrics Metrics,
	opts Options,
	logger Logger,
) *UseCase {
	return &UseCase{
		resolver:        resolver,
		serviceRepo:     serviceRepo,
		appointmentRepo: appointmentRepo,
		outboxRepo:      outboxRepo,
		txManager:       txManager,
		metrics:         metrics,
		opts:            opts,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute создает запись.
// Поиск мастера, блокировка кандидатов и вставка выполняются в одной транзакции;
// проигранная гонка повторяется один раз, затем возвращается ErrNoStaffAvailable.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (result *domain.Appointment, err error) {
	ctx, span := tracer.Start(ctx, "BookAppointment")
	span.SetAttributes(
		attribute.Int64("customer.id", req.CustomerID),
		attribute.Int64("service.id", req.ServiceID),
		attribute.String("appointment.start", req.StartTime.UTC().Format(time.RFC3339)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("BookAppointment: customer=%d, service=%d, start=%s, payment=%s",
		req.CustomerID, req.ServiceID, req.StartTime.Format(time.RFC3339), req.PaymentMethod)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		uc.metrics.IncBooking(resultRejected)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Транзакция с одной повторной попыткой при конфликте
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = uc.book(ctx, req, now)
		if err == nil {
			break
		}
		if !isConflict(err) {
			uc.metrics.IncBooking(metricResult(err))
			return nil, err
		}

		uc.metrics.IncBooking(resultConflict)
		if attempt == maxAttempts {
			uc.logger.Warn("BookAppointment: conflict persisted after %d attempts: %v", attempt, err)
			return nil, fmt.Errorf("%w: lost the race for the last free staff member", ErrNoStaffAvailable)
		}
		uc.logger.Warn("BookAppointment: concurrency conflict, retrying: %v", err)
	}

	if result.StaffID == nil {
		uc.metrics.IncBooking(resultUnassigned)
		uc.logger.Info("BookAppointment: created unassigned appointment id=%d", result.ID)
	} else {
		uc.metrics.IncBooking(resultCreated)
		uc.logger.Info("BookAppointment: created appointment id=%d, staff=%d", result.ID, *result.StaffID)
		span.SetAttributes(attribute.Int64("staff.id", *result.StaffID))
	}
	span.SetAttributes(attribute.Int64("appointment.id", result.ID))

	return result, nil
}

// book выполняет одну попытку записи в транзакции
func (uc *UseCase) book(ctx context.Context, req *Request, now time.Time) (*domain.Appointment, error) {
	var created *domain.Appointment

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2.1. Свободные мастера с блокировкой кандидатов
		res, err := uc.resolver.Resolve(txCtx, availability.Request{
			ServiceID: req.ServiceID,
			Start:     req.StartTime,
			Now:       now,
			Lock:      true,
		})

		var appointment *domain.Appointment
		switch {
		case err == nil:
			// 2.2. Равновероятный выбор мастера
			picked := uc.resolver.Pick(res.Available)
			appointment = newAppointment(req, res.Service, res.Start, res.End, &picked.ID)
			uc.logger.Info("BookAppointment: picked staff=%d of %d available", picked.ID, len(res.Available))

		case uc.opts.AllowUnassignedBooking && isStaffShortage(err):
			uc.logger.Warn("BookAppointment: %v, creating unassigned appointment", err)
			appointment, err = uc.unassignedAppointment(txCtx, req)
			if err != nil {
				return err
			}

		case errors.Is(err, availability.ErrInternal):
			uc.logger.Error("BookAppointment: availability failed: %v", err)
			return fmt.Errorf("%w: %v", ErrInternal, err)

		default:
			uc.logger.Warn("BookAppointment: rejected: %v", err)
			return err
		}

		// 2.3. Сохраняем запись
		created, err = uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrStaffConflict) {
				return err
			}
			uc.logger.Error("BookAppointment: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
		}

		// 2.4. Событие в той же транзакции
		event, err := domain.NewAppointmentEvent(domain.EventAppointmentBooked, created, req.CustomerID, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if err := uc.outboxRepo.Insert(txCtx, event); err != nil {
			uc.logger.Error("BookAppointment: failed to store event: %v", err)
			return fmt.Errorf("%w: failed to store event: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// unassignedAppointment строит запись без мастера в статусе pending
func (uc *UseCase) unassignedAppointment(ctx context.Context, req *Request) (*domain.Appointment, error) {
	service, err := uc.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		uc.logger.Error("BookAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	start := req.StartTime
	a := newAppointment(req, service, start, start.Add(service.Duration()), nil)
	a.Status = domain.StatusPending
	return a, nil
}

func newAppointment(req *Request, service *domain.Service, start, end time.Time, staffID *int64) *domain.Appointment {
	return &domain.Appointment{
		CustomerID:    req.CustomerID,
		StaffID:       staffID,
		ServiceID:     service.ID,
		StartTime:     start,
		EndTime:       end,
		Status:        domain.StatusConfirmed,
		ServiceName:   service.Name,
		ServicePrice:  service.Price,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: domain.PaymentUnpaid,
		RefundAmount:  decimal.Zero,
	}
}

func isConflict(err error) bool {
	return errors.Is(err, appointmentRepo.ErrStaffConflict) ||
		errors.Is(err, txmanager.ErrConcurrencyConflict) ||
		errors.Is(err, domain.ErrConcurrencyConflict)
}

func isStaffShortage(err error) bool {
	return errors.Is(err, domain.ErrNoQualifiedStaff) || errors.Is(err, domain.ErrNoStaffAvailable)
}

func metricResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoQualifiedStaff):
		return "no_qualified_staff"
	case errors.Is(err, domain.ErrNoStaffAvailable):
		return "no_staff_available"
	case errors.Is(err, domain.ErrOutsideBusinessHours):
		return "outside_business_hours"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		return resultRejected
	default:
		return resultError
	}
}
