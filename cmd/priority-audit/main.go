package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/reliefops/go-disaster-response/internal/config"
	"github.com/reliefops/go-disaster-response/internal/logging"
	"github.com/reliefops/go-disaster-response/internal/priority"
	"github.com/reliefops/go-disaster-response/internal/repository"
	"github.com/reliefops/go-disaster-response/internal/weather"
)

// priority-audit scores a stored report and prints the full scoring
// trace, so an operator can see exactly how a tier was reached.
func main() {
	id := flag.Int64("id", 0, "report id to audit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *id <= 0 {
		logging.Fatalf("usage: priority-audit -id <report id>")
	}

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	r, err := db.GetByID(ctx, *id)
	if err != nil {
		logging.Fatalf("Failed to fetch report %d: %v", *id, err)
	}

	var classifier priority.WeatherClassifier
	if cfg.Weather.Enabled {
		classifier = weather.NewClient(cfg.Weather.URL, cfg.Weather.Timeout, slog.Default())
	}

	res, err := priority.Score(ctx, r, classifier)
	if err != nil {
		logging.Fatalf("Failed to score report %d: %v", *id, err)
	}

	fmt.Printf("Report %d (%s) at %s\n\n", r.ID, r.DisasterType, r.Location)
	fmt.Println(res.TraceText())

	if res.Level != r.PriorityLevel && r.PriorityLevel != "" {
		fmt.Printf("\nStored priority is %s; current scoring yields %s.\n", r.PriorityLevel, res.Level)
	}
}
