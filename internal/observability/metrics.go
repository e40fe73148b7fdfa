package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/linktrack/linktrack"

// Metrics holds the counters for link checking and update delivery. All
// methods are safe on a nil receiver, so callers need no enabled checks.
type Metrics struct {
	linksChecked metric.Int64Counter
	updatesSent  metric.Int64Counter
}

// NewMetrics creates the metric instruments on the global meter. Returns
// nil (not an error) when the provider is nil, i.e. observability is off.
func NewMetrics(p *Provider) (*Metrics, error) {
	if p == nil {
		return nil, nil
	}
	meter := otel.Meter(instrumentationName)

	linksChecked, err := meter.Int64Counter("linktrack.links.checked",
		metric.WithDescription("Tracked links checked against their source"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating links.checked counter: %w", err)
	}
	updatesSent, err := meter.Int64Counter("linktrack.updates.sent",
		metric.WithDescription("Link update notifications dispatched"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating updates.sent counter: %w", err)
	}

	return &Metrics{linksChecked: linksChecked, updatesSent: updatesSent}, nil
}

// RecordLinkCheck counts one link check with its outcome.
func (m *Metrics) RecordLinkCheck(ctx context.Context, changed bool, failed bool) {
	if m == nil {
		return
	}
	status := "unchanged"
	switch {
	case failed:
		status = "error"
	case changed:
		status = "changed"
	}
	m.linksChecked.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordUpdatesSent counts dispatched updates.
func (m *Metrics) RecordUpdatesSent(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.updatesSent.Add(ctx, int64(n))
}

// GinMiddleware traces every request and tags the span with method, route,
// and status. A no-op when observability is disabled, since the global
// provider then defaults to no-op implementations.
func GinMiddleware(serviceName string) gin.HandlerFunc {
	tracer := otel.Tracer(instrumentationName)
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+c.FullPath(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		span.SetAttributes(
			attribute.String("http.status_code", strconv.Itoa(c.Writer.Status())),
			attribute.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}
}
