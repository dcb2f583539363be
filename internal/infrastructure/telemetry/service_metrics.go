package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope of the service metrics
const MeterName = "customer-identity"

// ServiceMetrics records the authentication and customer activity of the service.
// A nil *ServiceMetrics records nothing.
type ServiceMetrics struct {
	logins              *Counter
	tokenValidations    *Counter
	customerMutations   *Counter
	orderLookups        *Counter
	orderLookupDuration *Histogram
}

// NewServiceMetrics registers the service instruments on meter
func NewServiceMetrics(meter metric.Meter) (*ServiceMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	logins, err := NewCounter(meter, "auth_logins_total", "Login attempts by outcome", "{attempt}")
	if err != nil {
		return nil, err
	}
	validations, err := NewCounter(meter, "auth_token_validations_total", "Bearer token validations by outcome", "{token}")
	if err != nil {
		return nil, err
	}
	mutations, err := NewCounter(meter, "customer_mutations_total", "Customer writes by operation", "{customer}")
	if err != nil {
		return nil, err
	}
	lookups, err := NewCounter(meter, "order_lookups_total", "Order service lookups by outcome", "{request}")
	if err != nil {
		return nil, err
	}
	lookupDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "order_lookup_duration_seconds",
		Description: "Order service lookup latency",
		Unit:        "s",
		Boundaries:  UpstreamDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &ServiceMetrics{
		logins:              logins,
		tokenValidations:    validations,
		customerMutations:   mutations,
		orderLookups:        lookups,
		orderLookupDuration: lookupDuration,
	}, nil
}

// NewNopServiceMetrics returns metrics backed by a no-op meter
func NewNopServiceMetrics() *ServiceMetrics {
	m, _ := NewServiceMetrics(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// RecordLogin counts a login attempt
func (m *ServiceMetrics) RecordLogin(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.logins.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordTokenValidation counts a bearer token check
func (m *ServiceMetrics) RecordTokenValidation(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.tokenValidations.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordCustomerMutation counts a successful create, update or delete
func (m *ServiceMetrics) RecordCustomerMutation(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.customerMutations.Inc(ctx, AttrOperation.String(operation))
}

// RecordOrderLookup counts an order service call and its latency
func (m *ServiceMetrics) RecordOrderLookup(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.orderLookups.Inc(ctx, AttrOutcome.String(outcome))
	m.orderLookupDuration.RecordDuration(ctx, elapsed, AttrOutcome.String(outcome))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewServiceMetrics", Err: "meter cannot be nil"}

// MetricsError represents an error in metrics setup.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
