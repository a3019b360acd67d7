package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"mlm-membership-platform/internal/config"
	pg "mlm-membership-platform/internal/infra/db/postgres"
	"mlm-membership-platform/internal/usecase"

	"github.com/rs/zerolog"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	logger := zerolog.Nop()
	planUC := usecase.NewPlanUseCase(pg.NewPlanRepo(pool), &logger)

	// If plans already exist, do nothing
	plans, err := planUC.List(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (price=%d)\n", p.Name, p.Price)
		}
		return
	}

	seed := []struct {
		Name  string
		Price int64
	}{
		{"Silver", 1_500_000},
		{"Gold", 4_500_000},
		{"Diamond", 12_000_000},
	}

	for _, s := range seed {
		p, err := planUC.Create(ctx, s.Name, s.Price)
		if err != nil {
			log.Fatalf("create plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%d, price=%d)\n", p.Name, p.ID, p.Price)
	}

	fmt.Println("Seeding complete.")
}
