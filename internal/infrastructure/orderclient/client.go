// Package orderclient reads a customer's orders from the downstream order service.
package orderclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/customeridentity/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultTimeout bounds one lookup including reading the body
	DefaultTimeout = 2 * time.Second

	maxResponseSize = 1 << 20
)

// Order is the order service's view of one order
type Order struct {
	OrderID     int64           `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	OrderStatus string          `json:"orderStatus"`
}

// FailureKind classifies a failed lookup
type FailureKind string

const (
	KindTimeout          FailureKind = "timeout"
	KindUnreachable      FailureKind = "unreachable"
	KindUpstream5xx      FailureKind = "upstream_5xx"
	KindUnexpectedStatus FailureKind = "unexpected_status"
	KindDecode           FailureKind = "decode"
)

// LookupError is returned for every failed lookup
type LookupError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("order lookup failed (%s): HTTP %d", e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("order lookup failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("order lookup failed (%s)", e.Kind)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or "" when err is not a lookup failure
func KindOf(err error) FailureKind {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// Client calls GET {base}/orders/customer/{id}. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client from config with an otelhttp traced transport
func New(cfg config.OrderServiceConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewWithHTTPClient(cfg.BaseURL, &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

// NewWithHTTPClient creates a client that sends requests through httpClient
func NewWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid order service base url %q", baseURL)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// GetOrdersByCustomerID returns the orders of a customer. A null body is an empty list.
func (c *Client) GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]Order, error) {
	endpoint := c.baseURL + "/orders/customer/" + strconv.FormatInt(customerID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &LookupError{Kind: KindUnreachable, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &LookupError{Kind: classifyTransportError(err), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, &LookupError{Kind: KindUpstream5xx, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &LookupError{Kind: KindUnexpectedStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &LookupError{Kind: classifyTransportError(err), Err: err}
	}

	var orders []Order
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, &LookupError{Kind: KindDecode, Err: err}
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func classifyTransportError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnreachable
}

// NoopClient is used when the order service is disabled
type NoopClient struct{}

// GetOrdersByCustomerID always returns an empty list
func (NoopClient) GetOrdersByCustomerID(context.Context, int64) ([]Order, error) {
	return []Order{}, nil
}
