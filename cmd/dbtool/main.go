package main

import (
	"context"
	"database/sql"
	"delivery-map-client/internal/adapters/cache"
	"delivery-map-client/internal/config"
	"delivery-map-client/internal/platform/db"
	"flag"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// dbtool manages the SQL segment cache: "init" creates the schema,
// "prune -keep VERSION" drops segments of every other graph version.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if len(os.Args) < 2 {
		log.Fatal("usage: dbtool init | prune [-keep VERSION]")
	}

	conn, dialect, err := open(config.Get("CACHE_DRIVER", config.CachePostgres))
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()
	switch os.Args[1] {
	case "init":
		log.Println("Initializing segment cache schema...")
		if err := cache.InitSchema(ctx, conn, dialect); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		log.Println("Schema ready.")

	case "prune":
		fs := flag.NewFlagSet("prune", flag.ExitOnError)
		keep := fs.String("keep", "", "graph version to keep; empty removes every segment")
		_ = fs.Parse(os.Args[2:])

		log.Println("Pruning segment cache...")
		n, err := cache.Prune(ctx, conn, dialect, *keep)
		if err != nil {
			log.Fatalf("prune failed: %v", err)
		}
		log.Printf("Pruned %d segments.", n)

	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}

func open(driver string) (*sql.DB, cache.Dialect, error) {
	if driver == config.CacheSqlite {
		conn, err := db.OpenSqlite(config.Get("CACHE_PATH", "data/segments.db"))
		return conn, cache.Sqlite, err
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}
	conn, err := db.Open(databaseURL)
	return conn, cache.Postgres, err
}
