package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/dashboard_backend/models"
	"github.com/mmdatafocus/dashboard_backend/utils"
	"gorm.io/gorm"
)

// RevenueKey identifies a property within its tenant; ids alone are ambiguous.
type RevenueKey struct {
	TenantId   string
	PropertyId string
}

type revenueTotalReader struct {
	db *gorm.DB
}

// getRevenueTotals issues one aggregate query per tenant in the batch.
// A key without reservations resolves to a nil total.
func (r *revenueTotalReader) getRevenueTotals(ctx context.Context, keys []RevenueKey) []*dataloader.Result[*models.RevenueTotal] {
	byTenant := make(map[string][]string)
	for _, k := range keys {
		byTenant[k.TenantId] = append(byTenant[k.TenantId], k.PropertyId)
	}

	totals := make(map[RevenueKey]*models.RevenueTotal, len(keys))
	failed := make(map[RevenueKey]error)
	for tenantId, propertyIds := range byTenant {
		rows, err := models.SumRevenueByProperty(utils.SetTenantIdInContext(ctx, tenantId), r.db, tenantId, propertyIds)
		if err != nil {
			return handleError[*models.RevenueTotal](len(keys), err)
		}
		folded, errs := models.FoldRevenueTotals(rows)
		for propertyId, total := range folded {
			totals[RevenueKey{TenantId: tenantId, PropertyId: propertyId}] = total
		}
		for propertyId, err := range errs {
			failed[RevenueKey{TenantId: tenantId, PropertyId: propertyId}] = err
		}
	}

	results := make([]*dataloader.Result[*models.RevenueTotal], 0, len(keys))
	for _, k := range keys {
		if err, ok := failed[k]; ok {
			results = append(results, &dataloader.Result[*models.RevenueTotal]{Error: err})
			continue
		}
		results = append(results, &dataloader.Result[*models.RevenueTotal]{Data: totals[k]})
	}
	return results
}

// GetRevenueTotal loads through the request loader when present, otherwise queries directly.
func GetRevenueTotal(ctx context.Context, db *gorm.DB, key RevenueKey) (*models.RevenueTotal, error) {
	if loaders := For(ctx); loaders != nil {
		return loaders.RevenueTotalLoader.Load(ctx, key)()
	}
	reader := &revenueTotalReader{db: db}
	result := reader.getRevenueTotals(ctx, []RevenueKey{key})[0]
	return result.Data, result.Error
}
