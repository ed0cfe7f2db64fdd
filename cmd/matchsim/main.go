// Command matchsim drives a complete curling match end-to-end using the
// FCV1 physics simulator, logging every turn and exposing Prometheus
// metrics, mirroring the teacher's process-level wiring in cmd/server.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"curling/cmd/matchsim/live"
	"curling/cmd/matchsim/render"
	"curling/config"
	"curling/eventlog"
	"curling/internal/presentation"
	"curling/match"
	"curling/simulator/fcv1"
	"curling/stone"
	"curling/team"
	"curling/telemetry"
	"curling/vector2"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Info().Msg("no .env file found, using environment variables only")
		}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("CURLING_DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	setting := config.Load()
	setting.Logger = &log.Logger

	recorder := telemetry.NewRecorder(prometheus.DefaultRegisterer)
	setting.Recorder = recorder

	events := eventlog.NewEventLog()
	eventLogPath := getEnvWithDefault("CURLING_EVENT_LOG_PATH", "match-events.jsonl")
	if err := events.Start(eventLogPath); err != nil {
		log.Warn().Err(err).Msg("event log disabled")
	} else {
		setting.Events = events
		defer events.Stop()
		log.Info().Str("path", eventLogPath).Msg("event log started")
	}

	serverCfg := presentation.ServerFromEnv()
	if serverCfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", telemetry.Handler())
			log.Info().Str("addr", serverCfg.MetricsAddr).Msg("metrics server starting")
			if err := http.ListenAndServe(serverCfg.MetricsAddr, mux); err != nil {
				log.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	sim := fcv1.New(fcv1.DefaultSecondsPerFrame)
	state := match.NewState(setting, team.Team0, config.ThinkingTime())
	var stateMu sync.Mutex

	log.Info().
		Int("end_count", setting.EndCount).
		Bool("five_rock_rule", setting.FiveRockRule).
		Msg("match starting")

	if serverCfg.LiveAddr != "" {
		server := live.NewServer(func() live.StateView {
			stateMu.Lock()
			defer stateMu.Unlock()
			return live.NewStateView(state)
		})
		go func() {
			log.Info().Str("addr", serverCfg.LiveAddr).Msg("live viewer starting")
			if err := server.Start(serverCfg.LiveAddr); err != nil {
				log.Warn().Err(err).Msg("live viewer stopped")
			}
		}()
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		os.Exit(0)
	}()

	snapshotCfg := presentation.SnapshotFromEnv()
	if snapshotCfg.Dir != "" {
		if err := os.MkdirAll(snapshotCfg.Dir, 0o755); err != nil {
			log.Warn().Err(err).Msg("snapshot directory unavailable, disabling snapshots")
			snapshotCfg.Dir = ""
		}
	}

	for state.Result == nil {
		stateMu.Lock()
		move := demoShot(state)
		start := time.Now()
		result, err := match.ApplyMove(setting, state, sim, move, time.Second)
		end, shot := state.End, state.Shot
		stateMu.Unlock()
		if err != nil {
			log.Error().Err(err).Msg("apply_move failed")
			break
		}
		log.Debug().
			Dur("elapsed", time.Since(start)).
			Bool("fgz_foul", result.FreeGuardZoneFoul).
			Bool("no_tick_foul", result.NoTickFoul).
			Msg("turn resolved")

		if snapshotCfg.Dir != "" {
			stateMu.Lock()
			dc := render.Sheet(state, snapshotCfg.Width, snapshotCfg.Height)
			stateMu.Unlock()
			path := filepath.Join(snapshotCfg.Dir, fmt.Sprintf("end-%02d-shot-%02d.png", end, shot))
			if err := render.Save(dc, path); err != nil {
				log.Warn().Err(err).Str("path", path).Msg("snapshot save failed")
			}
		}
	}

	if state.Result != nil {
		log.Info().
			Str("winner", state.Result.Winner.String()).
			Str("reason", state.Result.Reason.String()).
			Msg("match finished")
	}
}

// demoShot picks a simple, deterministic draw shot down the centre line:
// a stand-in for a real strategy/AI layer, which is out of scope for this
// engine.
func demoShot(state *match.State) match.Move {
	return match.Shot{
		Velocity: vector2.Vector2{X: 0, Y: 2.4},
		Rotation: stone.CCW,
	}
}

func getEnvWithDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
