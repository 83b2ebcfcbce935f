package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// revenuePlaces is the number of decimal places reported for totals.
const revenuePlaces = 2

// Totals outside these bounds are rejected before rounding; rescaling a value like
// 1e200000000 allocates without limit.
const (
	maxTotalLength   = 128
	maxTotalExponent = 64
)

// RawRevenueSummary is what the revenue source returns for one property.
// Total keeps the source's decimal text so no binary float is involved before rounding.
type RawRevenueSummary struct {
	PropertyId string      `json:"property_id"`
	Total      json.Number `json:"total"`
	Currency   string      `json:"currency"`
	Count      int         `json:"count"`
}

type RevenueSummaryResponse struct {
	PropertyId        string  `json:"property_id"`
	TotalRevenue      float64 `json:"total_revenue"`
	Currency          string  `json:"currency"`
	ReservationsCount int     `json:"reservations_count"`
}

// ParseRevenueTotal reads a decimal total exactly.
func ParseRevenueTotal(total json.Number) (decimal.Decimal, error) {
	s := strings.TrimSpace(total.String())
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty total")
	}
	if len(s) > maxTotalLength {
		return decimal.Zero, fmt.Errorf("total has %d characters, limit is %d", len(s), maxTotalLength)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid total %q: %w", s, err)
	}
	if exp := d.Exponent(); exp > maxTotalExponent || exp < -maxTotalExponent {
		return decimal.Zero, fmt.Errorf("total %q is out of range", s)
	}
	return d, nil
}

// RoundHalfUp rounds to places with ties going away from zero (0.005 -> 0.01, -0.005 -> -0.01).
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// RoundedRevenue parses total, rounds it in decimal and only then converts to float64.
func RoundedRevenue(total json.Number) (float64, error) {
	d, err := ParseRevenueTotal(total)
	if err != nil {
		return 0, err
	}
	f, _ := RoundHalfUp(d, revenuePlaces).Float64()
	return f, nil
}
