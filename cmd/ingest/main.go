package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dupfinder/internal/app"
	"dupfinder/internal/config"
	"dupfinder/internal/dedup"
	"dupfinder/internal/models"
)

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "Path to the tickets file")
	format := flag.String("format", "", "Input format: json, jsonl or csv (default: from file extension)")
	concurrency := flag.Int("concurrency", cfg.IngestConcurrency, "Rows processed in parallel")
	ratePerSecond := flag.Float64("rate", float64(cfg.IngestRatePerSecond), "Max rows started per second, 0 for unlimited")
	flag.Parse()

	if *filePath == "" {
		fmt.Println("Usage:")
		fmt.Println("  ingest -file tickets.csv")
		fmt.Println("  ingest -file dump.txt -format jsonl -concurrency 8 -rate 20")
		os.Exit(2)
	}

	logger := cfg.SetupLogger()

	if err := checkPersistentStore(cfg); err != nil {
		logger.Fatal().Err(err).Msg("Refusing to ingest")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rows, err := loadRows(*filePath, *format)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read tickets")
	}
	fmt.Printf("Read %d rows from %s\n", len(rows), *filePath)

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize")
	}
	if err := a.CheckProviders(ctx); err != nil {
		_ = a.Close()
		logger.Fatal().Err(err).Msg("Model provider check failed")
	}

	start := time.Now()
	report, err := a.Service.IngestBatch(ctx, rows, dedup.BatchOptions{
		Concurrency:   *concurrency,
		RatePerSecond: *ratePerSecond,
	})
	printReport(os.Stdout, report, time.Since(start))

	if closeErr := a.Close(); closeErr != nil {
		logger.Warn().Err(closeErr).Msg("Failed to close resources")
	}

	if err != nil {
		logger.Error().Err(err).Msg("Ingestion interrupted")
		os.Exit(1)
	}
	if len(report.Dropped) > 0 {
		os.Exit(1)
	}
}

// checkPersistentStore rejects the in-memory backend, whose tickets would be
// gone as soon as the command exits
func checkPersistentStore(cfg *config.Config) error {
	if cfg.StoreBackend == config.BackendMemory {
		return fmt.Errorf("STORE_BACKEND=%s does not keep tickets after ingest exits; set it to %s, %s or %s",
			config.BackendMemory, config.BackendPostgres, config.BackendMySQL, config.BackendQdrant)
	}
	return nil
}

func loadRows(path, format string) ([]models.RawTicket, error) {
	format, err := detectFormat(path, format)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return readRows(f, format)
}

func printReport(w io.Writer, report dedup.BatchReport, elapsed time.Duration) {
	_, _ = fmt.Fprintf(w, "Ingested %d of %d rows in %s (%d dropped)\n",
		report.Ingested, report.Total, elapsed.Round(time.Millisecond), len(report.Dropped))
	for _, d := range report.Dropped {
		_, _ = fmt.Fprintf(w, "  row %d (id %d): %v\n", d.Index+1, d.ID, d.Err)
	}
}
