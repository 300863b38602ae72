package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/archivelab/scriptorium/config"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
input_dir: ./in
output_dir: ./out
bucket: scans
region: us-east-1

batch_size: 4
workers: 2

poll:
  delay_seconds: 3
  max_attempts: 20

correction:
  provider: anthropic
  model: claude-sonnet-4-5
  retries: 5
  rate_limit: 2.5

validation:
  word_count_ratio: 0.2
  gate: true
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	require.Equal(t, "./in", cfg.InputDir)
	require.Equal(t, 4, cfg.BatchSize)
	require.Equal(t, 2, cfg.Workers)

	policy := cfg.PollPolicy()
	require.Equal(t, 3*time.Second, policy.Delay)
	require.Equal(t, 20, policy.MaxAttempts)

	require.Equal(t, "anthropic", cfg.Correction.Provider)
	require.Equal(t, 5, cfg.RetryPolicy().Attempts)

	thresholds := cfg.Thresholds()
	require.InDelta(t, 0.2, thresholds.WordCount, 1e-9)
	require.InDelta(t, 0.15, thresholds.EditDistance, 1e-9)
	require.True(t, thresholds.Gate)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
input_dir: ./in
output_dir: ./out
bucket: scans
region: us-east-1
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	require.Equal(t, 10, cfg.BatchSize)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, 5*time.Second, cfg.PollPolicy().Delay)
	require.Equal(t, 60, cfg.PollPolicy().MaxAttempts)
	require.Equal(t, "openai", cfg.Correction.Provider)
	require.Equal(t, "tmp", cfg.TmpDir)
}

func TestLoadEnvFallback(t *testing.T) {
	t.Setenv("INPUT_DIR", "./env-in")
	t.Setenv("OUTPUT_DIR", "./env-out")
	t.Setenv("BUCKET_NAME", "env-bucket")
	t.Setenv("REGION", "eu-west-1")
	t.Setenv("BATCH_SIZE", "7")

	cfg, err := config.Load("")

	require.NoError(t, err)
	require.Equal(t, "./env-in", cfg.InputDir)
	require.Equal(t, "env-bucket", cfg.Bucket)
	require.Equal(t, 7, cfg.BatchSize)
}

func TestLoadMissingRequired(t *testing.T) {
	path := writeConfig(t, `
input_dir: ./in
`)

	_, err := config.Load(path)

	require.ErrorContains(t, err, "output_dir is required")
	require.ErrorContains(t, err, "bucket is required")
}

func TestLoadUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
input_dir: ./in
output_dir: ./out
bucket: scans
region: us-east-1

correction:
  provider: cohere
`)

	_, err := config.Load(path)

	require.ErrorContains(t, err, "unknown correction provider")
}
