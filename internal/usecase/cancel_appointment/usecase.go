package cancel_appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/paymentgateway"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/cancellation"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

var tracer = otel.Tracer("github.com/m04kA/SMC-SalonBookingService/internal/usecase/cancel_appointment")

// UseCase use case для отмены записи с возвратом оплаты
type UseCase struct {
	appointmentRepo AppointmentRepository
	outboxRepo      OutboxRepository
	gateway         PaymentGateway
	txManager       TransactionManager
	policy          cancellation.Policy
	location        *time.Location
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// location - часовой пояс салона, от его полуночи считается дневной лимит отмен.
func NewUseCase(
	appointmentRepo AppointmentRepository,
	outboxRepo OutboxRepository,
	gateway PaymentGateway,
	txManager TransactionManager,
	policy cancellation.Policy,
	location *time.Location,
	metrics Metrics,
	logger Logger,
) *UseCase {
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		appointmentRepo: appointmentRepo,
		outboxRepo:      outboxRepo,
		gateway:         gateway,
		txManager:       txManager,
		policy:          policy,
		location:        location,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute отменяет запись.
// Строка записи блокируется до конца транзакции, поэтому повторная отмена
// дожидается первой и получает ErrAlreadyCancelled. Если возврат не прошел,
// транзакция откатывается и запись остается активной.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "CancelAppointment")
	span.SetAttributes(
		attribute.Int64("appointment.id", req.AppointmentID),
		attribute.Int64("actor.id", req.Actor.ID),
		attribute.String("actor.role", string(req.Actor.Role)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("CancelAppointment: appointment=%d, actor=%d (%s)", req.AppointmentID, req.Actor.ID, req.Actor.Role)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelAppointment: validation failed: %v", err)
		uc.metrics.IncCancellation(resultRejected)
		return nil, err
	}

	now := uc.timeProvider.Now()

	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2. Запись под блокировкой
		a, err := uc.appointmentRepo.GetByIDForUpdate(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				uc.logger.Warn("CancelAppointment: appointment id=%d not found", req.AppointmentID)
				return ErrAppointmentNotFound
			}
			uc.logger.Error("CancelAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		// 3. Владелец или администратор
		if !canCancel(req.Actor, a) {
			uc.logger.Warn("CancelAppointment: actor=%d (%s) cannot cancel appointment id=%d",
				req.Actor.ID, req.Actor.Role, a.ID)
			return ErrForbidden
		}

		// 4. Сколько клиент уже отменил сегодня
		cancelledToday := 0
		if req.Actor.IsCustomer() {
			since := cancellation.StartOfDay(now, uc.location)
			cancelledToday, err = uc.appointmentRepo.CountCancelledByCustomerSince(txCtx, a.CustomerID, since)
			if err != nil {
				uc.logger.Error("CancelAppointment: failed to count cancellations: %v", err)
				return fmt.Errorf("%w: failed to count cancellations: %v", ErrInternal, err)
			}
		}

		// 5. Правила отмены и сумма возврата
		decision, err := uc.policy.Evaluate(a, now, cancelledToday, req.Actor)
		if err != nil {
			uc.logger.Warn("CancelAppointment: appointment id=%d rejected: %v", a.ID, err)
			return err
		}

		params := appointmentRepo.CancelParams{
			Reason:      normalizeReason(req.Reason),
			CancelledBy: req.Actor.ID,
			CancelledAt: now,
		}

		// 6. Возврат через платежную систему
		if decision.NeedsRefund() {
			refund, err := uc.refund(txCtx, a, decision, params.Reason)
			if err != nil {
				return err
			}
			params.RefundAmount = ptr.Ptr(decision.RefundAmount)
			params.PaymentStatus = ptr.Ptr(domain.PaymentRefunded)
			params.RefundReference = ptr.Ptr(refund.ID)
		}

		// 7. Сохраняем отмену
		if err := uc.appointmentRepo.Cancel(txCtx, a.ID, params); err != nil {
			uc.logger.Error("CancelAppointment: failed to cancel appointment id=%d: %v", a.ID, err)
			return fmt.Errorf("%w: failed to cancel appointment: %v", ErrInternal, err)
		}
		applyCancel(a, params)

		// 8. Событие в той же транзакции
		event, err := domain.NewAppointmentEvent(domain.EventAppointmentCancelled, a, req.Actor.ID, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		if err := uc.outboxRepo.Insert(txCtx, event); err != nil {
			uc.logger.Error("CancelAppointment: failed to store event: %v", err)
			return fmt.Errorf("%w: failed to store event: %v", ErrInternal, err)
		}

		resp = &Response{
			Appointment:  a,
			RefundKind:   string(decision.RefundKind),
			RefundAmount: decision.RefundAmount,
		}
		return nil
	})
	if err != nil {
		uc.metrics.IncCancellation(metricResult(err))
		return nil, err
	}

	uc.metrics.IncCancellation(resultCancelled)
	if resp.RefundKind != string(cancellation.RefundNone) {
		uc.metrics.IncRefund(resp.RefundKind)
	}
	uc.logger.Info("CancelAppointment: appointment id=%d cancelled, refund=%s (%s)",
		resp.Appointment.ID, resp.RefundAmount.StringFixed(2), resp.RefundKind)

	return resp, nil
}

// refund проводит возврат. Ключ идемпотентности зависит только от записи,
// поэтому повтор после сбоя не вернет деньги дважды.
func (uc *UseCase) refund(ctx context.Context, a *domain.Appointment, d cancellation.Decision, reason *string) (*paymentgateway.RefundResult, error) {
	if a.TransactionID == nil || strings.TrimSpace(*a.TransactionID) == "" {
		uc.logger.Error("CancelAppointment: appointment id=%d is paid online but has no transaction reference", a.ID)
		uc.metrics.IncRefund("failed")
		return nil, fmt.Errorf("%w: no transaction reference", ErrRefundProcessingFailed)
	}

	req := paymentgateway.RefundRequest{
		TransactionRef: *a.TransactionID,
		Amount:         d.RefundAmount,
		Partial:        d.RefundAmount.LessThan(a.ServicePrice),
		IdempotencyKey: refundIdempotencyKey(a.ID),
	}
	if reason != nil {
		req.Reason = *reason
	}

	result, err := uc.gateway.CreateRefund(ctx, req)
	if err != nil {
		uc.logger.Error("CancelAppointment: refund for appointment id=%d failed: %v", a.ID, err)
		uc.metrics.IncRefund("failed")
		return nil, fmt.Errorf("%w: %v", ErrRefundProcessingFailed, err)
	}

	uc.logger.Info("CancelAppointment: refund %s of %s issued for appointment id=%d",
		result.ID, d.RefundAmount.StringFixed(2), a.ID)
	return result, nil
}

func refundIdempotencyKey(appointmentID int64) string {
	return fmt.Sprintf("appointment-refund-%d", appointmentID)
}

func normalizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// applyCancel отражает сохраненную отмену в модели для ответа и события
func applyCancel(a *domain.Appointment, p appointmentRepo.CancelParams) {
	a.Status = domain.StatusCancelled
	a.CancellationReason = p.Reason
	a.CancelledBy = ptr.Ptr(p.CancelledBy)
	a.CancelledAt = ptr.Ptr(p.CancelledAt)
	if p.RefundAmount != nil {
		a.RefundAmount = *p.RefundAmount
	}
	if p.PaymentStatus != nil {
		a.PaymentStatus = *p.PaymentStatus
	}
	if p.RefundReference != nil {
		a.RefundReference = p.RefundReference
	}
}

func metricResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrRefundProcessingFailed):
		return resultFailed
	case errors.Is(err, ErrInternal):
		return resultError
	default:
		return resultRejected
	}
}
