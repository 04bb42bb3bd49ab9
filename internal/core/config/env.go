package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "IMPACTSCAN_"

// ApplyEnvOverrides copies IMPACTSCAN_* variables over cfg. Values that fail
// to parse are logged and ignored.
func ApplyEnvOverrides(cfg *Config) {
	overrideEnv(&cfg.Project.Root, "ROOT", parseString)
	overrideEnv(&cfg.Project.Entry, "PROJECT_ENTRY", parseString)

	overrideEnv(&cfg.Changes.BaseRef, "BASE_REF", parseString)
	overrideEnv(&cfg.Changes.File, "CHANGES_FILE", parseString)
	overrideEnv(&cfg.Changes.IncludeUntracked, "CHANGES_INCLUDE_UNTRACKED", parseBool)

	overrideEnv(&cfg.Traversal.Concurrency, "TRAVERSAL_CONCURRENCY", strconv.Atoi)
	overrideEnv(&cfg.Traversal.ReadsPerSecond, "TRAVERSAL_READS_PER_SECOND", parseFloat)

	overrideEnv(&cfg.Output.Format, "OUTPUT_FORMAT", parseString)

	overrideEnv(&cfg.Observability.MetricsAddr, "METRICS_ADDR", parseString)
	overrideEnv(&cfg.Observability.OTLPEndpoint, "OTLP_ENDPOINT", parseString)
	overrideEnv(&cfg.Observability.OTLPInsecure, "OTLP_INSECURE", parseBool)

	overrideEnv(&cfg.Watch.Debounce, "WATCH_DEBOUNCE", time.ParseDuration)
}

func overrideEnv[T any](target *T, name string, parse func(string) (T, error)) {
	key := envPrefix + name
	raw, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	v, err := parse(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("ignoring invalid env override", "key", key, "value", raw, "error", err)
		return
	}
	slog.Debug("applying env override", "key", key, "value", raw)
	*target = v
}

func parseString(s string) (string, error) { return s, nil }

func parseBool(s string) (bool, error) { return strconv.ParseBool(strings.ToLower(s)) }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
