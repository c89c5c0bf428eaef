package postgres

import (
	"context"
	"time"

	"github.com/phrazzld/folio-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/phrazzld/folio-api/internal/platform/postgres"

var (
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Duration of store operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "operation", "outcome"})

	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_operations_total",
		Help: "Total number of store operations.",
	}, []string{"entity", "operation", "outcome"})
)

// startOperation opens a span for one store call. The returned func must be
// deferred with a pointer to the call's named error result; it records the
// duration and outcome once the call returns.
func startOperation(ctx context.Context, entity, operation string) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, entity+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("store.entity", entity),
			attribute.String("store.operation", operation),
		))

	return ctx, func(errp *error) {
		outcome := "ok"
		if errp != nil && *errp != nil {
			kind := store.KindOf(*errp)
			outcome = kind.String()
			// Caller mistakes are not span errors.
			if kind == store.KindStore || kind == store.KindTransaction {
				span.RecordError(*errp)
				span.SetStatus(codes.Error, outcome)
			}
		}
		span.SetAttributes(attribute.String("store.outcome", outcome))
		span.End()

		operationDuration.WithLabelValues(entity, operation, outcome).Observe(time.Since(start).Seconds())
		operationsTotal.WithLabelValues(entity, operation, outcome).Inc()
	}
}
