// Command seed-bazaars imports bazaars from a JSON file. Bazaars are created
// out of band; the API only toggles whether they accept donations.
//
// Usage:
//
//	seed-bazaars --file=bazaars.json
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/bazaar-backend/internal/app"
	"github.com/heartmarshall/bazaar-backend/internal/config"
	"github.com/heartmarshall/bazaar-backend/internal/service/bazaar"
)

func main() {
	file := flag.String("file", "", "path to a JSON array of bazaars")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: seed-bazaars --file=bazaars.json")
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	f, err := os.Open(*file)
	if err != nil {
		logger.Error("open seed file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	input, err := bazaar.DecodeSeed(f)
	if err != nil {
		logger.Error("read seed file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	backends, err := app.OpenStore(ctx, cfg, logger, nil)
	if err != nil {
		logger.Error("open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backends.Close()

	// The shared cache must be invalidated so servers pick up the import.
	if err := backends.OpenCache(ctx, cfg); err != nil {
		logger.Error("open cache", slog.String("error", err.Error()))
		os.Exit(1)
	}

	svc := bazaar.NewService(logger, backends.Store, backends.Cache, backends.Tx, nil)
	n, err := svc.Import(ctx, input)
	if err != nil {
		logger.Error("import bazaars", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Imported %d bazaars.\n", n)
}
