// Package billing links operators to billing customers.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// DefaultBaseURL is the Stripe API root.
const DefaultBaseURL = stripe.APIURL

// APIError is a failed Stripe call.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("stripe: status %d", e.Status)
	}
	return fmt.Sprintf("stripe: status %d: %s", e.Status, e.Message)
}

// Client resolves customers through the stripe-go SDK.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a billing client. An empty key yields a client whose
// EnsureCustomer is a no-op.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:     strings.TrimSpace(apiKey),
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c != nil && c.APIKey != "" }

func (c *Client) api() *client.API {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:           stripe.String(base),
		HTTPClient:    c.HTTPClient,
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	sc := &client.API{}
	sc.Init(c.APIKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return sc
}

// EnsureCustomer returns the id of the customer with email, creating one when
// none exists. Without an API key it returns "".
func (c *Client) EnsureCustomer(ctx context.Context, email string) (string, error) {
	if !c.Configured() {
		slog.Info("Billing not configured, skipping customer sync", "email", email)
		return "", nil
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("ensure customer: email is required")
	}
	sc := c.api()

	list := &stripe.CustomerListParams{Email: stripe.String(email)}
	list.Limit = stripe.Int64(1)
	list.Context = ctx
	it := sc.Customers.List(list)
	if it.Next() {
		return it.Customer().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", fmt.Errorf("find customer: %w", apiError(err))
	}

	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	created, err := sc.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", apiError(err))
	}
	slog.Info("Billing customer created", "customer", created.ID)
	return created.ID, nil
}

func apiError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &APIError{Status: se.HTTPStatusCode, Type: string(se.Type), Message: se.Msg}
	}
	return err
}
