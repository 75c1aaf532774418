// Package envconfig reads seqnet settings from SEQNET_* environment
// variables. Every getter re-reads the environment, so values set by tests
// with t.Setenv take effect immediately.
package envconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LogLevel returns the log level.
// Configurable via SEQNET_DEBUG: 0/false = INFO (default), 1/true = DEBUG,
// other integers n = slog.Level(-4n).
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("SEQNET_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// DataDir returns the directory holding data sets and weight files.
// Configurable via SEQNET_DATA_DIR. Default: ./data
func DataDir() string {
	if s := Var("SEQNET_DATA_DIR"); s != "" {
		return s
	}
	return filepath.Join(".", "data")
}

var (
	// Seed seeds parameter initialization. Configurable via SEQNET_SEED.
	Seed = Int("SEQNET_SEED", 42)
	// Workers is the number of goroutines sharing a training batch.
	// Configurable via SEQNET_WORKERS; 1 trains sequentially.
	Workers = Uint("SEQNET_WORKERS", 1)
	// Epochs overrides the command's default epoch count. Configurable via SEQNET_EPOCHS.
	Epochs = Uint("SEQNET_EPOCHS", 0)
	// BatchSize overrides the command's default batch size. Configurable via SEQNET_BATCH_SIZE.
	BatchSize = Uint("SEQNET_BATCH_SIZE", 0)
	// LearningRate overrides the command's default learning rate.
	// Configurable via SEQNET_LEARNING_RATE.
	LearningRate = Float("SEQNET_LEARNING_RATE", 0)
	// Precision selects the checkpoint storage type (float16, float32, float64).
	// Configurable via SEQNET_PRECISION; empty keeps the model's own type.
	Precision = String("SEQNET_PRECISION")
	// Quiet suppresses per-epoch progress tables. Configurable via SEQNET_QUIET.
	Quiet = Bool("SEQNET_QUIET")
)

// Var returns an environment variable stripped of leading and trailing
// quotes and spaces.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
