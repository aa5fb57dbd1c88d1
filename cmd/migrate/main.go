package main

import (
	"context"
	"log"
	"os"

	"jobmetrics/adapters/sqlstore"
	"jobmetrics/internal/migration"
)

// migrate applies the run store schema ahead of the first server start.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <postgres|sqlite3> <database_url>")
	}
	driver, databaseURL := os.Args[1], os.Args[2]

	db, err := sqlstore.Open(context.Background(), driver, databaseURL)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM runs`); err != nil {
		log.Fatalf("Failed to inspect runs table: %v", err)
	}
	log.Printf("Schema version %s applied to %s database (%d stored runs)", migration.NewRunner().Version(), driver, n)
}
