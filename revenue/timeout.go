package revenue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/dashboard_backend/dashboard"
)

// TimeoutFetcher bounds every fetch by timeout. An expired deadline is reported as
// ErrUpstream while still matching context.DeadlineExceeded.
type TimeoutFetcher struct {
	next    dashboard.RevenueFetcher
	timeout time.Duration
}

func NewTimeoutFetcher(next dashboard.RevenueFetcher, timeout time.Duration) *TimeoutFetcher {
	return &TimeoutFetcher{next: next, timeout: timeout}
}

func (f *TimeoutFetcher) FetchRevenueSummary(ctx context.Context, propertyId, tenantId string) (*dashboard.RawRevenueSummary, error) {
	if f.timeout <= 0 {
		return f.next.FetchRevenueSummary(ctx, propertyId, tenantId)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	raw, err := f.next.FetchRevenueSummary(ctx, propertyId, tenantId)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, dashboard.ErrUpstream) {
			return nil, fmt.Errorf("%w: %w", dashboard.ErrUpstream, err)
		}
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: %w", dashboard.ErrUpstream, ctxErr)
	}
	return raw, nil
}
