package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/mvaldes-dev/storecraft-backend/pkg/config"
	"github.com/mvaldes-dev/storecraft-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errSecretRequired   = errors.New("stripe webhook secret is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client wraps Stripe's API client plus env-specific metadata.
type Client struct {
	api           *stripe.Client
	environment   string
	currency      string
	signingSecret string
}

// Intent is the subset of a Stripe payment intent the checkout flow cares about.
type Intent struct {
	Reference    string
	ClientSecret string
}

// NewClient initializes Stripe once with the configured secrets and env.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	signingSecret := strings.TrimSpace(cfg.Secret)
	if signingSecret == "" {
		return nil, errSecretRequired
	}

	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	api := stripe.NewClient(apiKey)

	currency := strings.TrimSpace(strings.ToLower(cfg.Currency))
	if currency == "" {
		currency = "usd"
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{
		api:           api,
		environment:   env,
		currency:      currency,
		signingSecret: signingSecret,
	}, nil
}

// CreateIntent creates a payment intent for the given minor-unit amount.
func (c *Client) CreateIntent(ctx context.Context, amountMinorUnits int64) (*Intent, error) {
	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(c.currency),
	}
	pi, err := c.api.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{Reference: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// UpdateIntent revises the amount on an existing payment intent. The intent's
// id and client secret are unchanged by this call.
func (c *Client) UpdateIntent(ctx context.Context, reference string, amountMinorUnits int64) error {
	params := &stripe.PaymentIntentUpdateParams{
		Amount: stripe.Int64(amountMinorUnits),
	}
	if _, err := c.api.V1PaymentIntents.Update(ctx, reference, params); err != nil {
		return fmt.Errorf("update payment intent %s: %w", reference, err)
	}
	return nil
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// Currency reports the charge currency configured for the store.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
