package revenue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mmdatafocus/dashboard_backend/dashboard"
	"github.com/mmdatafocus/dashboard_backend/middlewares"
	"gorm.io/gorm"
)

// DBFetcher sums a property's reservations in the database.
type DBFetcher struct {
	db func() *gorm.DB
}

// NewDBFetcher takes a getter so the fetcher can be built before the database connects.
func NewDBFetcher(db func() *gorm.DB) *DBFetcher {
	return &DBFetcher{db: db}
}

func (f *DBFetcher) FetchRevenueSummary(ctx context.Context, propertyId, tenantId string) (*dashboard.RawRevenueSummary, error) {
	conn := f.db()
	if conn == nil {
		return nil, fmt.Errorf("%w: database not connected", dashboard.ErrUpstream)
	}

	total, err := middlewares.GetRevenueTotal(ctx, conn, middlewares.RevenueKey{TenantId: tenantId, PropertyId: propertyId})
	if err != nil {
		// context errors stay matchable so callers can tell a timeout from a failure
		return nil, fmt.Errorf("%w: %w", dashboard.ErrUpstream, err)
	}
	if total == nil || total.Count == 0 {
		return nil, dashboard.ErrNotFound
	}

	return &dashboard.RawRevenueSummary{
		PropertyId: total.PropertyId,
		Total:      json.Number(total.Total.String()),
		Currency:   total.Currency,
		Count:      total.Count,
	}, nil
}
