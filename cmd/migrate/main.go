package main

import (
	"context"
	"log"
	"os"

	"gundash/adapters/postgres"
	"gundash/internal/config"
	"gundash/internal/migration"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	dbConfig := config.DatabaseConfig{URL: os.Getenv("DATABASE_URL")}
	if len(os.Args) > 1 {
		dbConfig.URL = os.Args[1]
	}
	if dbConfig.Driver() == "" || dbConfig.Driver() == "unknown" {
		log.Fatal("Usage: migrate <postgres://... | sqlite:path> (or set DATABASE_URL)")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	log.Printf("Applying schema %s to %s database", runner.Version(), dbConfig.Driver())
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration complete")
}
