package envconfig

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
)

// BoolWithDefault returns a getter reading a bool with a default value.
// Any non-empty value that does not parse counts as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a getter reading a bool (default false).
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// String returns a getter reading a string.
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// Uint returns a getter reading a uint with a default value.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Int returns a getter reading an int64 with a default value.
func Int(key string, defaultValue int64) func() int64 {
	return func() int64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseInt(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// Float returns a getter reading a float64 with a default value.
func Float(key string, defaultValue float64) func() float64 {
	return func() float64 {
		if s := Var(key); s != "" {
			if f, err := strconv.ParseFloat(s, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return f
			}
		}
		return defaultValue
	}
}

// EnvVar describes one environment variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every setting with its current value and description.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"SEQNET_DEBUG":         {"SEQNET_DEBUG", LogLevel(), "Show additional debug information (e.g. SEQNET_DEBUG=1)"},
		"SEQNET_SEED":          {"SEQNET_SEED", Seed(), "Seed for parameter initialization (default 42)"},
		"SEQNET_WORKERS":       {"SEQNET_WORKERS", Workers(), "Goroutines sharing each training batch (default 1)"},
		"SEQNET_DATA_DIR":      {"SEQNET_DATA_DIR", DataDir(), "Directory holding data sets and weight files (default ./data)"},
		"SEQNET_EPOCHS":        {"SEQNET_EPOCHS", Epochs(), "Override the default number of epochs"},
		"SEQNET_BATCH_SIZE":    {"SEQNET_BATCH_SIZE", BatchSize(), "Override the default batch size"},
		"SEQNET_LEARNING_RATE": {"SEQNET_LEARNING_RATE", LearningRate(), "Override the default learning rate"},
		"SEQNET_PRECISION":     {"SEQNET_PRECISION", Precision(), "Checkpoint storage type: float16, float32 or float64"},
		"SEQNET_QUIET":         {"SEQNET_QUIET", Quiet(), "Do not print per-epoch progress tables"},
	}
}

// Values returns every setting formatted as a string, keyed by name.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Names returns the variable names in sorted order.
func Names() []string {
	m := AsMap()
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
