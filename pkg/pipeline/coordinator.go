package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/archivelab/scriptorium/pkg/document"

	"golang.org/x/sync/errgroup"
)

// Coordinator partitions the input set into batches and runs each
// batch on a bounded worker pool. Worker failures are isolated per
// document; batch cleanup runs only after every worker of the batch
// has returned.
type Coordinator struct {
	Pipeline *Pipeline

	InputDir string

	BatchSize int
	Workers   int

	Logger *slog.Logger
}

type Summary struct {
	RunID string

	Total  int
	Done   int
	Failed int
	Warned int

	Outcomes []document.Outcome

	Events []Event

	Elapsed time.Duration
}

func (c *Coordinator) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()

	sources, err := c.discover()

	if err != nil {
		return nil, err
	}

	if err := resetDir(c.Pipeline.TmpDir); err != nil {
		return nil, err
	}

	defer c.cleanTmp()

	summary := &Summary{
		RunID: c.Pipeline.RunID,

		Total: len(sources),
	}

	batches := document.Partition(sources, c.BatchSize)

	c.Logger.Info("run started", "run", c.Pipeline.RunID, "documents", len(sources), "batches", len(batches), "workers", c.Workers)

	for i, batch := range batches {
		c.Logger.Info("processing batch", "batch", i+1, "of", len(batches), "size", len(batch))

		outcomes := c.runBatch(ctx, batch)
		summary.Outcomes = append(summary.Outcomes, outcomes...)
	}

	for _, outcome := range summary.Outcomes {
		if outcome.Failed() {
			summary.Failed++
		} else {
			summary.Done++
		}

		if len(outcome.Warnings) > 0 {
			summary.Warned++
		}
	}

	summary.Events = c.Pipeline.Recorder.Events()
	summary.Elapsed = time.Since(started)

	c.Logger.Info("run finished", "done", summary.Done, "failed", summary.Failed, "warned", summary.Warned, "elapsed", summary.Elapsed)

	return summary, nil
}

func (c *Coordinator) runBatch(ctx context.Context, sources []string) []document.Outcome {
	docs := make([]*document.Document, len(sources))

	for i, source := range sources {
		docs[i] = document.New(source)
	}

	outcomes := make([]document.Outcome, len(docs))

	var g errgroup.Group
	g.SetLimit(max(c.Workers, 1))

	for i, doc := range docs {
		g.Go(func() error {
			outcomes[i] = c.Pipeline.Process(ctx, doc)

			// Errors are part of the outcome; returning one here
			// would cancel sibling documents.
			return nil
		})
	}

	// Join barrier: cleanup never runs concurrently with in-flight
	// processing of the same batch.
	_ = g.Wait()

	c.cleanupBatch(ctx, docs)

	return outcomes
}

// cleanupBatch deletes every remote object recorded for the batch,
// whether its document succeeded or failed. Delete failures are logged
// and leave an orphaned object behind; they never abort the run.
func (c *Coordinator) cleanupBatch(ctx context.Context, docs []*document.Document) {
	for _, doc := range docs {
		if doc.RemoteKey == "" {
			continue
		}

		if err := c.Pipeline.Store.Delete(ctx, doc.RemoteKey); err != nil {
			c.Pipeline.Recorder.Record(doc.Key, EventCleanup, "delete failed: "+err.Error())
			c.Logger.Error("cleanup failed", "document", doc.Key, "key", doc.RemoteKey, "error", err)
			continue
		}

		c.Pipeline.Recorder.Record(doc.Key, EventCleanup, "deleted "+doc.RemoteKey)
		doc.RemoteKey = ""
	}
}

func (c *Coordinator) discover() ([]string, error) {
	entries, err := os.ReadDir(c.InputDir)

	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var sources []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg":
			sources = append(sources, filepath.Join(c.InputDir, entry.Name()))
		}
	}

	return sources, nil
}

func (c *Coordinator) cleanTmp() {
	if err := resetDir(c.Pipeline.TmpDir); err != nil {
		c.Logger.Error("failed to clean tmp dir", "dir", c.Pipeline.TmpDir, "error", err)
	}
}

func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	return nil
}
