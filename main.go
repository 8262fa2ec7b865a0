package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/taj0207/IngredientCheck/internal/infra/hazard/pubchem"
	"github.com/taj0207/IngredientCheck/internal/infra/regulatory"
)

// Quick hazard lookup against PubChem without a config file.
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}

	names := os.Args[1:]
	if len(names) == 0 {
		names = []string{"water", "benzene", "sodium benzoate", "hydroquinone"}
	}

	ctx := context.Background()

	// 1. Create the hazard client
	client := pubchem.NewClient(pubchem.Config{
		URL:     os.Getenv("PUBCHEM_URL"),
		Timeout: 30 * time.Second,
	})

	// 2. Annotate results with the regulatory dataset
	reg, err := regulatory.Default()
	if err != nil {
		log.Fatalf("load regulatory data: %v", err)
	}
	lookup := regulatory.Annotate(client, reg)

	fmt.Println("=== Hazard lookups ===")
	fmt.Println()

	// 3. Look up each name in turn
	for _, name := range names {
		info, err := lookup.Lookup(ctx, name)
		if err != nil {
			log.Printf("%s: lookup failed: %v", name, err)
			continue
		}
		if info == nil {
			fmt.Printf("%s: not found\n", name)
			continue
		}
		fmt.Printf("%s: %s (%d hazard statements, regulatory: %s)\n",
			name, info.Severity, len(info.HazardStatements), info.Regulatory.Level)

		time.Sleep(200 * time.Millisecond)
	}

	fmt.Println()

	// 4. Show provider stats
	h := client.Provider().GetHealth()
	fmt.Println("=== Provider ===")
	fmt.Printf("  Error rate: %.2f\n", h.ErrorRate)
	fmt.Printf("  Avg latency: %v\n", h.Latency.Round(time.Millisecond))
	if h.MonitorStats != nil {
		fmt.Printf("  Status: %s\n", h.MonitorStats.Status)
		fmt.Printf("  Requests (1h): %d\n", h.MonitorStats.RequestsLast1Hour)
	}
}
