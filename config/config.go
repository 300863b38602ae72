package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/archivelab/scriptorium/pkg/corrector"
	"github.com/archivelab/scriptorium/pkg/fidelity"
	"github.com/archivelab/scriptorium/pkg/ocr"

	"gopkg.in/yaml.v3"
)

// Config is the full process configuration. The pipeline core performs
// no environment lookups itself; everything it needs is resolved here,
// before the first document is touched.
type Config struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	TmpDir    string `yaml:"tmp_dir"`

	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`

	BatchSize int `yaml:"batch_size"`
	Workers   int `yaml:"workers"`

	Poll PollConfig `yaml:"poll"`

	Correction CorrectionConfig `yaml:"correction"`

	Validation ValidationConfig `yaml:"validation"`
}

type PollConfig struct {
	DelaySeconds int `yaml:"delay_seconds"`
	MaxAttempts  int `yaml:"max_attempts"`
}

type CorrectionConfig struct {
	Provider string `yaml:"provider"`

	URL   string `yaml:"url"`
	Model string `yaml:"model"`
	Token string `yaml:"token"`

	Retries        int `yaml:"retries"`
	BackoffSeconds int `yaml:"backoff_seconds"`

	// RateLimit caps correction requests per second across all
	// workers. Zero disables the limiter.
	RateLimit float64 `yaml:"rate_limit"`
}

type ValidationConfig struct {
	WordCountRatio    float64 `yaml:"word_count_ratio"`
	EditDistanceRatio float64 `yaml:"edit_distance_ratio"`

	Gate bool `yaml:"gate"`
}

// Load reads the optional YAML file, then fills gaps from the
// environment and defaults. Validation failures abort the run before
// any document is processed.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)

		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyEnv() {
	fallback(&cfg.InputDir, "INPUT_DIR")
	fallback(&cfg.OutputDir, "OUTPUT_DIR")
	fallback(&cfg.TmpDir, "TMP_DIR")
	fallback(&cfg.Bucket, "BUCKET_NAME")
	fallback(&cfg.Region, "REGION")

	fallbackInt(&cfg.BatchSize, "BATCH_SIZE")
	fallbackInt(&cfg.Workers, "WORKERS")

	fallbackInt(&cfg.Poll.DelaySeconds, "POLL_DELAY_SECONDS")
	fallbackInt(&cfg.Poll.MaxAttempts, "POLL_MAX_ATTEMPTS")

	fallback(&cfg.Correction.Provider, "CORRECTION_PROVIDER")
	fallback(&cfg.Correction.URL, "CORRECTION_URL")
	fallback(&cfg.Correction.Model, "CORRECTION_MODEL")
	fallbackInt(&cfg.Correction.Retries, "CORRECTION_RETRIES")
	fallbackInt(&cfg.Correction.BackoffSeconds, "CORRECTION_BACKOFF_SECONDS")

	if cfg.Correction.Token == "" {
		switch cfg.Correction.Provider {
		case "anthropic":
			cfg.Correction.Token = os.Getenv("ANTHROPIC_API_KEY")

		default:
			cfg.Correction.Token = os.Getenv("OPENAI_API_KEY")
		}
	}
}

func (cfg *Config) applyDefaults() {
	if cfg.TmpDir == "" {
		cfg.TmpDir = "tmp"
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	if cfg.Poll.DelaySeconds <= 0 {
		cfg.Poll.DelaySeconds = 5
	}

	if cfg.Poll.MaxAttempts <= 0 {
		cfg.Poll.MaxAttempts = 60
	}

	if cfg.Correction.Provider == "" {
		cfg.Correction.Provider = "openai"
	}

	if cfg.Correction.Model == "" {
		cfg.Correction.Model = "gpt-4o-mini"
	}

	if cfg.Correction.Retries <= 0 {
		cfg.Correction.Retries = 3
	}

	if cfg.Correction.BackoffSeconds <= 0 {
		cfg.Correction.BackoffSeconds = 2
	}

	defaults := fidelity.DefaultThresholds()

	if cfg.Validation.WordCountRatio <= 0 {
		cfg.Validation.WordCountRatio = defaults.WordCount
	}

	if cfg.Validation.EditDistanceRatio <= 0 {
		cfg.Validation.EditDistanceRatio = defaults.EditDistance
	}
}

func (cfg *Config) validate() error {
	var problems []error

	if cfg.InputDir == "" {
		problems = append(problems, errors.New("input_dir is required"))
	}

	if cfg.OutputDir == "" {
		problems = append(problems, errors.New("output_dir is required"))
	}

	if cfg.Bucket == "" {
		problems = append(problems, errors.New("bucket is required"))
	}

	if cfg.Region == "" {
		problems = append(problems, errors.New("region is required"))
	}

	switch cfg.Correction.Provider {
	case "openai", "anthropic":
	default:
		problems = append(problems, fmt.Errorf("unknown correction provider %q", cfg.Correction.Provider))
	}

	return errors.Join(problems...)
}

func (cfg *Config) PollPolicy() ocr.PollPolicy {
	return ocr.PollPolicy{
		Delay:       time.Duration(cfg.Poll.DelaySeconds) * time.Second,
		MaxAttempts: cfg.Poll.MaxAttempts,
	}
}

func (cfg *Config) RetryPolicy() corrector.RetryPolicy {
	return corrector.RetryPolicy{
		Attempts: cfg.Correction.Retries,
		Backoff:  time.Duration(cfg.Correction.BackoffSeconds) * time.Second,
	}
}

func (cfg *Config) Thresholds() fidelity.Thresholds {
	return fidelity.Thresholds{
		WordCount:    cfg.Validation.WordCountRatio,
		EditDistance: cfg.Validation.EditDistanceRatio,

		Gate: cfg.Validation.Gate,
	}
}

func fallback(target *string, key string) {
	if *target == "" {
		*target = os.Getenv(key)
	}
}

func fallbackInt(target *int, key string) {
	if *target != 0 {
		return
	}

	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*target = value
	}
}
