// Скрипт полного сброса измерительного хранилища.
// Запуск: go run scripts/reset_warehouse.go
// Схема пересоздаётся следующим прогоном конвейера (EnsureSchema).

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

func main() {
	connStr := os.Getenv("TARGET_DATABASE_URL")
	if connStr == "" {
		log.Fatal("TARGET_DATABASE_URL is not set")
	}

	fmt.Println("Connecting to warehouse...")
	fmt.Printf("Host: %s\n", extractHost(connStr))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	fmt.Println("Connected successfully!")

	// Порядок обратен зависимостям: сначала представления, затем факты,
	// затем измерения.
	commands := []string{
		"DROP MATERIALIZED VIEW IF EXISTS view_top_competitors",
		"DROP VIEW IF EXISTS view_price_recommendations",
		"DROP VIEW IF EXISTS view_listing_summary",
		"DROP TABLE IF EXISTS fact_competitor_pricing_analysis CASCADE",
		"DROP TABLE IF EXISTS bridge_listing_competitors CASCADE",
		"DROP TABLE IF EXISTS fact_listing_amenities_summary CASCADE",
		"DROP TABLE IF EXISTS fact_listing_metrics CASCADE",
		"DROP TABLE IF EXISTS dim_category_ratings CASCADE",
		"DROP TABLE IF EXISTS dim_location CASCADE",
		"DROP TABLE IF EXISTS dim_property CASCADE",
		"DROP TABLE IF EXISTS dim_host CASCADE",
	}

	for i, cmd := range commands {
		short := cmd
		if len(short) > 60 {
			short = short[:60] + "..."
		}
		fmt.Printf("[%d/%d] %s\n", i+1, len(commands), short)

		if _, err := conn.Exec(ctx, cmd); err != nil {
			log.Fatalf("Command failed: %v", err)
		}
	}

	fmt.Println("Warehouse reset complete. Run cmd/etl to rebuild the schema.")
}

func extractHost(connStr string) string {
	at := strings.Index(connStr, "@")
	if at == -1 {
		return "unknown"
	}
	rest := connStr[at+1:]
	if slash := strings.Index(rest, "/"); slash != -1 {
		return rest[:slash]
	}
	return rest
}
