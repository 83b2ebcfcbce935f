package dashboard

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RevenueFetcher is the revenue source. Implementations scope by tenant themselves,
// but the Gateway never relies on that.
type RevenueFetcher interface {
	FetchRevenueSummary(ctx context.Context, propertyId, tenantId string) (*RawRevenueSummary, error)
}

// RevenueFetcherFunc adapts a function to RevenueFetcher.
type RevenueFetcherFunc func(ctx context.Context, propertyId, tenantId string) (*RawRevenueSummary, error)

func (f RevenueFetcherFunc) FetchRevenueSummary(ctx context.Context, propertyId, tenantId string) (*RawRevenueSummary, error) {
	return f(ctx, propertyId, tenantId)
}

// Gateway serves the dashboard reads. It holds no per-request state.
type Gateway struct {
	directory TenantDirectory
	fetcher   RevenueFetcher
	tracer    trace.Tracer
}

func NewGateway(directory TenantDirectory, fetcher RevenueFetcher) *Gateway {
	return &Gateway{
		directory: directory,
		fetcher:   fetcher,
		tracer:    otel.Tracer("dashboard"),
	}
}

func (g *Gateway) ListProperties(ctx context.Context, principal Principal) []Property {
	_, span := g.tracer.Start(ctx, "dashboard.ListProperties",
		trace.WithAttributes(attribute.String("tenant.id", principal.ResolvedTenantId())))
	defer span.End()

	return g.directory.PropertiesFor(principal.ResolvedTenantId())
}

// GetRevenueSummary checks ownership before anything reaches the fetcher.
// Fetch errors are returned unchanged.
func (g *Gateway) GetRevenueSummary(ctx context.Context, propertyId string, principal Principal) (*RevenueSummaryResponse, error) {
	tenantId := principal.ResolvedTenantId()
	ctx, span := g.tracer.Start(ctx, "dashboard.GetRevenueSummary",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantId),
			attribute.String("property.id", propertyId),
		))
	defer span.End()

	resp, err := g.summary(ctx, propertyId, tenantId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return resp, nil
}

func (g *Gateway) summary(ctx context.Context, propertyId, tenantId string) (*RevenueSummaryResponse, error) {
	if propertyId == "" || !g.directory.IsOwned(tenantId, propertyId) {
		return nil, ErrForbidden
	}

	raw, err := g.fetcher.FetchRevenueSummary(ctx, propertyId, tenantId)
	if err != nil {
		return nil, err
	}
	// a fetch that ignored cancellation must still not produce a response
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty summary", ErrUpstream)
	}
	if raw.PropertyId != propertyId {
		return nil, fmt.Errorf("%w: summary answered for a different property", ErrUpstream)
	}
	if raw.Count < 0 {
		return nil, fmt.Errorf("%w: negative reservations count", ErrUpstream)
	}

	total, err := RoundedRevenue(raw.Total)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return &RevenueSummaryResponse{
		PropertyId:        raw.PropertyId,
		TotalRevenue:      total,
		Currency:          raw.Currency,
		ReservationsCount: raw.Count,
	}, nil
}
