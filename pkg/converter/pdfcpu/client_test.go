package pdfcpu_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/archivelab/scriptorium/pkg/converter"
	"github.com/archivelab/scriptorium/pkg/converter/pdfcpu"

	"github.com/stretchr/testify/require"
)

func TestConvertNoInputs(t *testing.T) {
	client := pdfcpu.New()

	_, err := client.Convert(context.Background(), nil, filepath.Join(t.TempDir(), "out.pdf"))

	require.ErrorIs(t, err, converter.ErrNoPages)
}

func TestConvertMissingSource(t *testing.T) {
	client := pdfcpu.New()

	_, err := client.Convert(context.Background(), []string{filepath.Join(t.TempDir(), "missing.jpg")}, filepath.Join(t.TempDir(), "out.pdf"))

	require.Error(t, err)
}

func TestConvertEmptySource(t *testing.T) {
	client := pdfcpu.New()

	dir := t.TempDir()
	source := filepath.Join(dir, "empty.jpg")
	require.NoError(t, os.WriteFile(source, nil, 0o644))

	_, err := client.Convert(context.Background(), []string{source}, filepath.Join(dir, "out.pdf"))

	require.ErrorContains(t, err, "empty file")
}

func TestConvertCancelledContext(t *testing.T) {
	client := pdfcpu.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	source := filepath.Join(dir, "page.jpg")
	require.NoError(t, os.WriteFile(source, []byte("jpeg"), 0o644))

	_, err := client.Convert(ctx, []string{source}, filepath.Join(dir, "out.pdf"))

	require.ErrorIs(t, err, context.Canceled)
}
