package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	StoreAuthAttemptsTotal   metric.Int64Counter
	StoreAuthRejectionsTotal metric.Int64Counter
	AccountsProvisionedTotal metric.Int64Counter
	ReservationsSubmitted    metric.Int64Counter
	ProfileBootstrapRetries  metric.Int64Counter
	StoreAuthDurationSeconds metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get initializes the global metric instruments on first use and returns them.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("reservation-portal")
		var err error
		m := &AppMetrics{}

		m.StoreAuthAttemptsTotal, err = meter.Int64Counter(
			"store_auth_attempts_total",
			metric.WithDescription("Total number of store token sign-in attempts"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_auth_attempts_total: %v", err)
		}

		m.StoreAuthRejectionsTotal, err = meter.Int64Counter(
			"store_auth_rejections_total",
			metric.WithDescription("Store sign-ins rejected by validation or token mismatch"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_auth_rejections_total: %v", err)
		}

		m.AccountsProvisionedTotal, err = meter.Int64Counter(
			"accounts_provisioned_total",
			metric.WithDescription("Store accounts created on first contact"),
			metric.WithUnit("{account}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create accounts_provisioned_total: %v", err)
		}

		m.ReservationsSubmitted, err = meter.Int64Counter(
			"reservations_submitted_total",
			metric.WithDescription("Reservation batches submitted by stores"),
			metric.WithUnit("{reservation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create reservations_submitted_total: %v", err)
		}

		m.ProfileBootstrapRetries, err = meter.Int64Counter(
			"profile_bootstrap_retries_total",
			metric.WithDescription("Transient profile fetch failures that were retried"),
			metric.WithUnit("{retry}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create profile_bootstrap_retries_total: %v", err)
		}

		m.StoreAuthDurationSeconds, err = meter.Float64Histogram(
			"store_auth_duration_seconds",
			metric.WithDescription("Duration of the full store auth orchestration"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create store_auth_duration_seconds: %v", err)
		}

		appMetrics = m
	})
	return appMetrics
}
