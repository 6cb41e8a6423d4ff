package main

import (
	"context"
	"database/sql"
	"delivery-dispatch-service/internal/adapters/repositories"
	"delivery-dispatch-service/internal/config"
	"delivery-dispatch-service/internal/platform/db"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// dbtool creates the dispatch schema in the configured SQL database.
// STORE_BACKEND selects postgres (DATABASE_URL) or sqlite (DB_PATH).
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend := strings.ToLower(config.Get("STORE_BACKEND", config.BackendPostgres))

	var (
		conn *sql.DB
		err  error
		initSchema func(context.Context, *sql.DB) error
	)
	switch backend {
	case config.BackendPostgres:
		databaseURL := os.Getenv("DATABASE_URL")
		if strings.TrimSpace(databaseURL) == "" {
			log.Fatal("DATABASE_URL is required")
		}
		conn, err = db.Open(ctx, databaseURL)
		initSchema = repositories.InitPostgresSchema
	case config.BackendSqlite:
		conn, err = db.OpenSqlite(ctx, config.Get("DB_PATH", "data/app.db"))
		initSchema = repositories.InitSqliteSchema
	default:
		log.Fatalf("dbtool supports STORE_BACKEND=postgres or sqlite, got %q", backend)
	}
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Printf("Initializing database schema backend=%s...", backend)
	if err := initSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}
