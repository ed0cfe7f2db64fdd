// Package presentation is the single source of truth for the optional
// viewing surfaces around a match: PNG snapshots and the live WebSocket
// viewer. It mirrors the teacher's centralized config-loading convention
// (internal/config in the original fight club server), narrowed to the
// two concerns a headless match simulator actually has: how big to draw
// the sheet, and where to serve it.
//
// IMPORTANT: environment variables are the only override mechanism.
// Match rules configuration lives in the top-level config package, not
// here — this package only ever touches pixels and addresses.
package presentation

import (
	"os"
	"strconv"
)

// SnapshotConfig controls the optional periodic PNG renderer in cmd/matchsim.
type SnapshotConfig struct {
	Width  int    // Canvas width in pixels
	Height int    // Canvas height in pixels
	Dir    string // Output directory; empty disables snapshotting
}

// DefaultSnapshot returns the default snapshot configuration.
func DefaultSnapshot() SnapshotConfig {
	return SnapshotConfig{
		Width:  600,
		Height: 1200,
	}
}

// SnapshotFromEnv returns the snapshot configuration with CURLING_SNAPSHOT_*
// environment variable overrides applied.
func SnapshotFromEnv() SnapshotConfig {
	cfg := DefaultSnapshot()

	if w := getEnvInt("CURLING_SNAPSHOT_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("CURLING_SNAPSHOT_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	cfg.Dir = os.Getenv("CURLING_SNAPSHOT_DIR")

	return cfg
}

// ServerConfig holds the two HTTP listeners a running match can expose:
// the live state viewer and the Prometheus metrics endpoint. Either
// address left blank disables that listener.
type ServerConfig struct {
	LiveAddr    string
	MetricsAddr string
}

// DefaultServer returns the default server configuration. The metrics
// listener is bound to loopback by default; the live viewer is disabled
// until an address is configured.
func DefaultServer() ServerConfig {
	return ServerConfig{
		MetricsAddr: "127.0.0.1:9090",
	}
}

// ServerFromEnv returns the server configuration with CURLING_LIVE_ADDR
// and CURLING_METRICS_ADDR overrides applied.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if addr := os.Getenv("CURLING_LIVE_ADDR"); addr != "" {
		cfg.LiveAddr = addr
	}
	if addr := os.Getenv("CURLING_METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}
	if os.Getenv("CURLING_DISABLE_METRICS") == "true" {
		cfg.MetricsAddr = ""
	}

	return cfg
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
