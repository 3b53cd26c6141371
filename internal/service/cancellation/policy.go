// Package cancellation считает, можно ли отменить запись и сколько вернуть клиенту.
package cancellation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Policy правила отмены. Нулевые значения полей заменяются значениями по умолчанию.
type Policy struct {
	DailyLimit           int
	MinNoticeHours       int
	FullRefundHours      int
	PartialRefundPercent int64
}

// RefundKind вид возврата
type RefundKind string

const (
	RefundNone    RefundKind = "none"
	RefundFull    RefundKind = "full"
	RefundPartial RefundKind = "partial"
)

// Decision результат проверки отмены
type Decision struct {
	HoursUntilStart float64
	RefundKind      RefundKind
	RefundAmount    decimal.Decimal // округлено до центов, ноль без возврата
}

// NeedsRefund возвращает true, если нужно провести возврат через платежный шлюз
func (d Decision) NeedsRefund() bool {
	return d.RefundKind != RefundNone && d.RefundAmount.IsPositive()
}

// DefaultPolicy правила по умолчанию
func DefaultPolicy() Policy {
	return Policy{
		DailyLimit:           domain.DefaultDailyCancellationLimit,
		MinNoticeHours:       domain.MinCancellationNoticeHours,
		FullRefundHours:      domain.FullRefundNoticeHours,
		PartialRefundPercent: domain.PartialRefundPercent,
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.DailyLimit <= 0 {
		p.DailyLimit = def.DailyLimit
	}
	if p.MinNoticeHours <= 0 {
		p.MinNoticeHours = def.MinNoticeHours
	}
	if p.FullRefundHours <= 0 {
		p.FullRefundHours = def.FullRefundHours
	}
	if p.PartialRefundPercent <= 0 {
		p.PartialRefundPercent = def.PartialRefundPercent
	}
	return p
}

// Evaluate проверяет отмену записи a в момент now.
// cancelledToday - сколько записей клиент уже отменил сам с начала суток;
// лимит применяется, только когда отменяет сам клиент.
func (p Policy) Evaluate(a *domain.Appointment, now time.Time, cancelledToday int, actor domain.Actor) (Decision, error) {
	p = p.withDefaults()

	if a.IsCancelled() {
		return Decision{}, ErrAlreadyCancelled
	}
	if a.Status == domain.StatusCompleted {
		return Decision{}, ErrNotCancellable
	}

	if actor.IsCustomer() && cancelledToday >= p.DailyLimit {
		return Decision{}, ErrDailyLimitExceeded
	}

	hours := a.StartTime.Sub(now).Hours()
	if hours < float64(p.MinNoticeHours) {
		return Decision{HoursUntilStart: hours}, ErrTooLateToCancel
	}

	decision := Decision{
		HoursUntilStart: hours,
		RefundKind:      RefundNone,
		RefundAmount:    decimal.Zero,
	}
	if !a.IsPaidOnline() {
		return decision, nil
	}

	if hours >= float64(p.FullRefundHours) {
		decision.RefundKind = RefundFull
		decision.RefundAmount = a.ServicePrice.Round(2)
	} else {
		decision.RefundKind = RefundPartial
		decision.RefundAmount = a.ServicePrice.
			Mul(decimal.NewFromInt(p.PartialRefundPercent)).
			Div(decimal.NewFromInt(100)).
			Round(2)
	}

	return decision, nil
}

// StartOfDay начало суток now в часовом поясе салона (для подсчета отмен за сегодня)
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
