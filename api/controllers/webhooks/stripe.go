package webhooks

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/mvaldes-dev/storecraft-backend/api/responses"
	stripewebhook "github.com/mvaldes-dev/storecraft-backend/internal/webhooks/stripe"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) (stripewebhook.Outcome, error)
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type stripeClient interface {
	SigningSecret() string
}

// StripeWebhook handles Stripe payment intent events. Everything the
// processor classifies as handled, including stale and duplicate deliveries,
// is acked with 200 so Stripe stops retrying; only verification and
// dependency failures bounce.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stripe client unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "stripe signature missing"))
			return
		}

		event, err := webhook.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "verify signature"))
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, map[string]string{"outcome": string(stripewebhook.OutcomeDuplicate)})
			return
		}

		outcome, err := svc.HandleEvent(ctx, &event)
		if err != nil {
			// Unmark the event so Stripe's retry is not swallowed as a
			// duplicate for the rest of the idempotency window.
			if delErr := guard.Delete(ctx, event.ID); delErr != nil && logg != nil {
				logg.Warn(logg.WithField(ctx, "delete_error", delErr.Error()), "failed to release idempotency mark")
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("stripe event %s %s", event.ID, outcome))
		}
		responses.WriteSuccess(w, map[string]string{"outcome": string(outcome)})
	}
}
