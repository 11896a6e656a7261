package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/mvaldes-dev/storecraft-backend/internal/orders"
	"github.com/mvaldes-dev/storecraft-backend/pkg/db/models"
	"github.com/mvaldes-dev/storecraft-backend/pkg/enums"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
	"github.com/mvaldes-dev/storecraft-backend/pkg/metrics"
)

// Outcome classifies what a webhook event did to the order it targeted.
type Outcome string

const (
	// OutcomeApplied means the order status changed.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the order was already in the target status.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored means the event type is not one we act on.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeStale means no live order carries the event's payment
	// reference; the event outlived the order it was about.
	OutcomeStale Outcome = "stale"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	OrderRepo         orders.Repository
	TransactionRunner txRunner
	Logger            *logger.Logger
	Metrics           *metrics.CheckoutMetrics
}

// Service applies gateway payment events to orders. Every status write,
// including re-applications, leaves a row in the status event audit log.
type Service struct {
	orders  orders.Repository
	tx      txRunner
	log     *logger.Logger
	metrics *metrics.CheckoutMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrderRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		orders:  params.OrderRepo,
		tx:      params.TransactionRunner,
		log:     params.Logger,
		metrics: params.Metrics,
	}, nil
}

// HandleEvent applies a payment intent event to the order bound to its
// payment reference. Unknown event types and stale references are consumed
// without error so the gateway stops redelivering them.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) (Outcome, error) {
	if event == nil || event.Data == nil {
		return OutcomeIgnored, pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	var target enums.OrderStatus
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		target = enums.OrderStatusPaymentReceived
	case stripe.EventTypePaymentIntentPaymentFailed:
		target = enums.OrderStatusPaymentFailed
	default:
		s.metrics.IncWebhookEvent(string(OutcomeIgnored))
		return OutcomeIgnored, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return OutcomeIgnored, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent event")
	}
	if intent.ID == "" {
		return OutcomeIgnored, pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}

	ctx = s.log.WithPaymentReference(ctx, intent.ID)
	outcome, err := s.apply(ctx, event.ID, intent.ID, target)
	if err != nil {
		return outcome, err
	}
	s.metrics.IncWebhookEvent(string(outcome))
	return outcome, nil
}

func (s *Service) apply(ctx context.Context, eventID, reference string, target enums.OrderStatus) (Outcome, error) {
	outcome := OutcomeIgnored
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)

		order, err := repo.FindByPaymentReference(ctx, reference)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order for payment reference")
		}
		if order == nil {
			outcome = OutcomeStale
			s.log.Warn(ctx, "payment event has no live order")
			return nil
		}

		ctx = s.log.WithOrderID(ctx, order.ID.String())
		auditEvent := &models.OrderStatusEvent{
			OrderID:        order.ID,
			FromStatus:     order.Status,
			ToStatus:       target,
			GatewayEventID: &eventID,
		}

		switch {
		case order.Status == target:
			outcome = OutcomeDuplicate
		default:
			// Last write wins, even across terminal states: gateways can
			// reverse a decision, and the audit log keeps the full history.
			if order.Status.Terminal() {
				s.log.Warn(ctx, "payment event overwrites terminal order status")
			}
			if err := repo.UpdateStatus(ctx, order.ID, target); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
			outcome = OutcomeApplied
			s.log.Info(ctx, "order status updated from payment event")
		}

		return repo.AppendStatusEvent(ctx, auditEvent)
	})
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}
