package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/archivelab/scriptorium/pkg/document"
	"github.com/archivelab/scriptorium/pkg/pipeline"

	"github.com/stretchr/testify/require"
)

func newCoordinator(t *testing.T, e *env, inputDir string, batchSize, workers int) *pipeline.Coordinator {
	t.Helper()

	return &pipeline.Coordinator{
		Pipeline: e.pipeline,

		InputDir: inputDir,

		BatchSize: batchSize,
		Workers:   workers,

		Logger: slog.New(slog.DiscardHandler),
	}
}

func writeInputs(t *testing.T, names ...string) string {
	t.Helper()

	dir := t.TempDir()

	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("jpeg"), 0o644))
	}

	return dir
}

func TestRunAllDocumentsReachTerminalStatus(t *testing.T) {
	e := newEnv(t)

	inputDir := writeInputs(t, "a.jpg", "b.jpg", "c.jpeg", "d.jpg", "e.jpg")
	coordinator := newCoordinator(t, e, inputDir, 2, 2)

	summary, err := coordinator.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 5, summary.Total)
	require.Equal(t, 5, summary.Done+summary.Failed)
	require.Len(t, summary.Outcomes, 5)
}

func TestRunIgnoresNonImageFiles(t *testing.T) {
	e := newEnv(t)

	inputDir := writeInputs(t, "a.jpg", "notes.txt", "b.JPEG", "c.png")
	coordinator := newCoordinator(t, e, inputDir, 10, 2)

	summary, err := coordinator.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 2, summary.Total)
}

func TestRunFailureIsolation(t *testing.T) {
	e := newEnv(t)

	inputDir := writeInputs(t, "broken.jpg", "valid.jpg")
	e.converter.failFor["broken"] = errors.New("corrupt image")

	coordinator := newCoordinator(t, e, inputDir, 2, 2)

	summary, err := coordinator.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 1, summary.Done)
	require.Equal(t, 1, summary.Failed)

	// Only the valid document ever uploaded, so cleanup touches only
	// its key.
	require.Equal(t, []string{"test-run/valid.pdf"}, e.store.deleted)
}

func TestRunCleanupCoversFailedDocuments(t *testing.T) {
	e := newEnv(t)
	e.ocr.submitErr = errors.New("access denied")

	inputDir := writeInputs(t, "a.jpg", "b.jpg")
	coordinator := newCoordinator(t, e, inputDir, 2, 2)

	summary, err := coordinator.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 2, summary.Failed)

	// Both uploads happened before the submit failures, so both keys
	// are cleaned.
	require.ElementsMatch(t, []string{"test-run/a.pdf", "test-run/b.pdf"}, e.store.deleted)
}

func TestRunCleanupFailureDoesNotAbort(t *testing.T) {
	e := newEnv(t)
	e.store.deleteErr = errors.New("network down")

	inputDir := writeInputs(t, "a.jpg", "b.jpg")
	coordinator := newCoordinator(t, e, inputDir, 1, 1)

	summary, err := coordinator.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 2, summary.Done)

	var cleanupFailures int

	for _, event := range summary.Events {
		if event.Kind == pipeline.EventCleanup {
			cleanupFailures++
		}
	}

	require.Equal(t, 2, cleanupFailures)
}

func TestRunBatchOrderIsReproducible(t *testing.T) {
	e := newEnv(t)

	inputDir := writeInputs(t, "c.jpg", "a.jpg", "b.jpg")
	coordinator := newCoordinator(t, e, inputDir, 2, 1)

	summary, err := coordinator.Run(context.Background())

	require.NoError(t, err)

	var keys []document.Key

	for _, outcome := range summary.Outcomes {
		keys = append(keys, outcome.Key)
	}

	require.Equal(t, []document.Key{"a", "b", "c"}, keys)
}

func TestRunMissingInputDir(t *testing.T) {
	e := newEnv(t)

	coordinator := newCoordinator(t, e, filepath.Join(t.TempDir(), "missing"), 2, 2)

	_, err := coordinator.Run(context.Background())

	require.Error(t, err)
}

func TestRunClearsTmpDir(t *testing.T) {
	e := newEnv(t)

	inputDir := writeInputs(t, "a.jpg")
	coordinator := newCoordinator(t, e, inputDir, 1, 1)

	_, err := coordinator.Run(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(e.pipeline.TmpDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
