package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrMixedCurrency = errors.New("property has reservations in more than one currency")

// Reservation is one booking of a property. Property ids are only unique per tenant,
// so every lookup filters by tenant_id as well.
type Reservation struct {
	ID           int             `gorm:"primary_key" json:"id"`
	TenantId     string          `gorm:"index:idx_reservations_tenant_property,priority:1;size:64;not null" json:"tenant_id"`
	PropertyId   string          `gorm:"index:idx_reservations_tenant_property,priority:2;size:64;not null" json:"property_id"`
	GuestName    string          `gorm:"size:255" json:"guest_name"`
	CheckInDate  time.Time       `gorm:"not null" json:"check_in_date"`
	CheckOutDate time.Time       `gorm:"not null" json:"check_out_date"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"total_amount"`
	Currency     string          `gorm:"size:3;not null" json:"currency"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RevenueTotal is the aggregate of one property's reservations in one currency.
type RevenueTotal struct {
	PropertyId string          `json:"property_id"`
	Currency   string          `json:"currency"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// SumRevenueByProperty aggregates reservations for the given properties of one tenant.
// A property with several currencies yields one row per currency.
func SumRevenueByProperty(ctx context.Context, db *gorm.DB, tenantId string, propertyIds []string) ([]RevenueTotal, error) {
	var rows []RevenueTotal
	if len(propertyIds) == 0 {
		return rows, nil
	}
	err := db.WithContext(ctx).
		Model(&Reservation{}).
		Select("property_id, currency, SUM(total_amount) AS total, COUNT(*) AS count").
		Where("tenant_id = ? AND property_id IN ?", tenantId, propertyIds).
		Group("property_id, currency").
		Order("property_id, currency").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FoldRevenueTotals reduces rows to one total per property id.
// Properties with rows in several currencies map to ErrMixedCurrency.
func FoldRevenueTotals(rows []RevenueTotal) (map[string]*RevenueTotal, map[string]error) {
	totals := make(map[string]*RevenueTotal, len(rows))
	errs := make(map[string]error)
	for i := range rows {
		row := rows[i]
		if _, bad := errs[row.PropertyId]; bad {
			continue
		}
		if existing, ok := totals[row.PropertyId]; ok && existing.Currency != row.Currency {
			delete(totals, row.PropertyId)
			errs[row.PropertyId] = ErrMixedCurrency
			continue
		}
		totals[row.PropertyId] = &row
	}
	return totals, errs
}
