package paymentgateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/refund"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/m04kA/SMC-SalonBookingService/internal/integrations/paymentgateway")

// RefundAPI часть Stripe API, используемая клиентом (*refund.Client)
type RefundAPI interface {
	New(params *stripe.RefundParams) (*stripe.Refund, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент платежной системы (Stripe) для возвратов
type Client struct {
	refunds RefundAPI
	log     Logger
}

// NewClient создает клиент Stripe. Пустой secretKey - возвраты недоступны.
func NewClient(secretKey string, timeout time.Duration, log Logger) *Client {
	if strings.TrimSpace(secretKey) == "" {
		return &Client{log: log}
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: timeout},
	})

	return &Client{
		refunds: &refund.Client{B: backend, Key: secretKey},
		log:     log,
	}
}

// NewClientWithAPI создает клиент поверх готовой реализации RefundAPI
func NewClientWithAPI(api RefundAPI, log Logger) *Client {
	return &Client{refunds: api, log: log}
}

// CreateRefund проводит полный или частичный возврат
func (c *Client) CreateRefund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	if c.refunds == nil {
		return nil, ErrNotConfigured
	}

	ref := strings.TrimSpace(req.TransactionRef)
	if ref == "" {
		return nil, fmt.Errorf("%w: transaction reference is empty", ErrInvalidRequest)
	}
	if req.Partial && !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: partial refund amount must be positive", ErrInvalidRequest)
	}

	params := &stripe.RefundParams{
		Reason: stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	if strings.HasPrefix(ref, "ch_") {
		params.Charge = stripe.String(ref)
	} else {
		params.PaymentIntent = stripe.String(ref)
	}
	if req.Partial {
		params.Amount = stripe.Int64(toMinorUnits(req.Amount))
	}
	if req.Reason != "" {
		params.AddMetadata("cancellation_reason", req.Reason)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	c.log.Info("CreateRefund: ref=%s, partial=%t, amount=%s", ref, req.Partial, req.Amount.StringFixed(2))

	_, span := tracer.Start(ctx, "stripe.CreateRefund",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Bool("refund.partial", req.Partial),
			attribute.String("refund.amount", req.Amount.StringFixed(2)),
		),
	)
	defer span.End()

	r, err := c.refunds.New(params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refund request failed")
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500 {
			c.log.Warn("CreateRefund: declined for ref=%s: %s (%s)", ref, stripeErr.Msg, stripeErr.Code)
			return nil, fmt.Errorf("%w: %s", ErrRefundDeclined, stripeErr.Msg)
		}
		c.log.Error("CreateRefund: request failed for ref=%s: %v", ref, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if r.Status == stripe.RefundStatusFailed || r.Status == stripe.RefundStatusCanceled {
		c.log.Warn("CreateRefund: refund %s for ref=%s has status %s", r.ID, ref, r.Status)
		span.SetStatus(codes.Error, "refund "+string(r.Status))
		return nil, fmt.Errorf("%w: refund status %s", ErrRefundDeclined, r.Status)
	}

	span.SetAttributes(attribute.String("refund.id", r.ID))

	return &RefundResult{
		ID:     r.ID,
		Amount: fromMinorUnits(r.Amount),
		Status: string(r.Status),
	}, nil
}

// toMinorUnits переводит сумму в центы
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
