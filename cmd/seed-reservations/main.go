// seed-reservations loads demo reservations for the built-in tenant directory.
// tenant-a/prop-002 sums to 1234.565 USD over 7 reservations, which the API reports as 1234.57.
// tenant-a/prop-003 is left without reservations so the summary returns 404.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-reservations -reset
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mmdatafocus/dashboard_backend/config"
	"github.com/mmdatafocus/dashboard_backend/models"
	"github.com/mmdatafocus/dashboard_backend/utils"
	"github.com/shopspring/decimal"
)

type seedProperty struct {
	tenantId   string
	propertyId string
	currency   string
	amounts    []string
}

var seedProperties = []seedProperty{
	{"tenant-a", "prop-001", "USD", []string{"420.00", "385.50", "610.25"}},
	{"tenant-a", "prop-002", "USD", []string{"150.10", "200.25", "175.005", "180.00", "199.21", "160.00", "170.00"}},
	{"tenant-b", "prop-001", "EUR", []string{"890.00", "1020.40"}},
	{"tenant-b", "prop-004", "EUR", []string{"240.00", "255.55", "260.45", "230.00"}},
	{"tenant-b", "prop-005", "EUR", []string{"99.995"}},
}

func main() {
	reset := flag.Bool("reset", false, "delete existing reservations of the seeded tenants first")
	migrate := flag.Bool("migrate", true, "run AutoMigrate before seeding")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if *migrate {
		models.MigrateTable()
	}

	// rows for several tenants are written from one context
	ctx := utils.SetSkipTenantScopeInContext(context.Background(), true)

	if *reset {
		tenants := map[string]bool{}
		for _, p := range seedProperties {
			tenants[p.tenantId] = true
		}
		for tenantId := range tenants {
			if err := db.WithContext(ctx).Where("tenant_id = ?", tenantId).Delete(&models.Reservation{}).Error; err != nil {
				fmt.Fprintf(os.Stderr, "failed to reset %s: %v\n", tenantId, err)
				os.Exit(1)
			}
		}
	}

	reservations, err := buildReservations(time.Now().UTC().Truncate(24 * time.Hour))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid seed data: %v\n", err)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).CreateInBatches(reservations, 100).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to insert reservations: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d reservations\n", len(reservations))
}

func buildReservations(base time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, p := range seedProperties {
		for i, raw := range p.amounts {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", p.tenantId, p.propertyId, err)
			}
			checkIn := base.AddDate(0, 0, -7*(i+1))
			out = append(out, models.Reservation{
				TenantId:     p.tenantId,
				PropertyId:   p.propertyId,
				GuestName:    fmt.Sprintf("Guest %d", i+1),
				CheckInDate:  checkIn,
				CheckOutDate: checkIn.AddDate(0, 0, 3),
				TotalAmount:  amount,
				Currency:     p.currency,
			})
		}
	}
	return out, nil
}
