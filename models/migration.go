package models

import (
	"log"

	"github.com/mmdatafocus/dashboard_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Reservation{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
