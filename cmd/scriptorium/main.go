package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/archivelab/scriptorium/config"
	"github.com/archivelab/scriptorium/pkg/converter/pdfcpu"
	"github.com/archivelab/scriptorium/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	// Optional; real environments set variables directly.
	_ = godotenv.Load()

	level := slog.LevelInfo

	if *verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if err := run(context.Background(), *configPath, logger); err != nil {
		logger.Error("run aborted", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)

	if err != nil {
		return err
	}

	store, ocrProvider, err := cfg.Clients(ctx)

	if err != nil {
		return err
	}

	correctionProvider, err := cfg.Corrector()

	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	coordinator := &pipeline.Coordinator{
		Pipeline: &pipeline.Pipeline{
			RunID: uuid.NewString(),

			Converter: pdfcpu.New(),
			Store:     store,
			OCR:       ocrProvider,
			Corrector: correctionProvider,

			PollPolicy:  cfg.PollPolicy(),
			RetryPolicy: cfg.RetryPolicy(),
			Thresholds:  cfg.Thresholds(),

			Output: pipeline.NewWriter(cfg.OutputDir),
			TmpDir: cfg.TmpDir,

			Recorder: pipeline.NewRecorder(),
			Logger:   logger,
		},

		InputDir: cfg.InputDir,

		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,

		Logger: logger,
	}

	summary, err := coordinator.Run(ctx)

	if err != nil {
		return err
	}

	for _, outcome := range summary.Outcomes {
		if outcome.Failed() {
			logger.Error("document failed", "document", outcome.Key, "error", outcome.Err)
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", summary.Failed, summary.Total)
	}

	return nil
}
