// Package stripe is a minimal client for the two Stripe Checkout calls the
// booking flow needs: creating a session and fetching it back to learn its
// payment status. The booking engine never interprets payment events itself;
// it only consumes the payment status this collaborator reports.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.stripe.com"

// CheckoutSession is the subset of a Stripe Checkout Session the booking
// flow cares about.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string // "paid", "unpaid", "no_payment_required"
	PaymentIntentID string
}

// Paid reports whether the session has been paid.
func (s CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid"
}

// CreateSessionParams describes a one-off payment for a booking.
type CreateSessionParams struct {
	// AmountCents is the charge in the currency's smallest unit.
	AmountCents int64
	Currency    string
	// ProductName is the line-item label shown on the Stripe page.
	ProductName   string
	CustomerEmail string
	// ClientReferenceID ties the session back to the booking id.
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
}

// Client is the payment-session surface consumed by the payment service.
// Defining it here lets service tests substitute a fake without HTTP.
type Client interface {
	CreateCheckoutSession(ctx context.Context, p CreateSessionParams) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error)
}

type httpClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option customises the HTTP client.
type Option func(*httpClient)

// WithBaseURL overrides the Stripe API base URL. Tests point this at a local
// httptest server.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// NewHTTP constructs a Client that talks to the Stripe REST API with the
// given secret key.
func NewHTTP(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sessionPayload mirrors the fields of Stripe's session object we decode.
type sessionPayload struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	PaymentIntent string `json:"payment_intent"`
}

func (c *httpClient) CreateCheckoutSession(ctx context.Context, p CreateSessionParams) (CheckoutSession, error) {
	// Stripe's API is form-encoded; nested fields use bracket notation.
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("client_reference_id", p.ClientReferenceID)
	if p.CustomerEmail != "" {
		form.Set("customer_email", p.CustomerEmail)
	}
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", p.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(p.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", p.ProductName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe.CreateCheckoutSession: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, "stripe.CreateCheckoutSession")
}

func (c *httpClient) GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/checkout/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("stripe.GetCheckoutSession: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req, "stripe.GetCheckoutSession")
}

func (c *httpClient) do(req *http.Request, op string) (CheckoutSession, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return CheckoutSession{}, fmt.Errorf("%s: stripe returned %s", op, resp.Status)
	}

	var payload sessionPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return CheckoutSession{}, fmt.Errorf("%s: decode: %w", op, err)
	}
	if payload.ID == "" {
		return CheckoutSession{}, fmt.Errorf("%s: empty session id in response", op)
	}

	return CheckoutSession{
		ID:              payload.ID,
		URL:             payload.URL,
		PaymentStatus:   payload.PaymentStatus,
		PaymentIntentID: payload.PaymentIntent,
	}, nil
}
