// Command companiond runs the synthetic companion's affective core and
// serves it over HTTP for rendering and control collaborators.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/talgya/companion/internal/api"
	"github.com/talgya/companion/internal/clock"
	"github.com/talgya/companion/internal/engine"
	"github.com/talgya/companion/internal/entropy"
	"github.com/talgya/companion/internal/gesture"
	"github.com/talgya/companion/internal/persistence"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dbPath := envOr("COMPANION_DB", "data/companion.db")
	apiPort := envInt("COMPANION_PORT", 8080)
	adminKey := os.Getenv("COMPANION_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("COMPANION_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	// ── Affective Engine ──────────────────────────────────────────────
	eng := engine.New(db, clock.Real(), entropy.Crypto{})
	eng.Start()

	// ── Gesture Classifier ────────────────────────────────────────────
	// Terminal touch events feed the engine; the input and rendering
	// layers attach their own subscriptions.
	cls := gesture.NewClassifier(clock.Real(), gesture.DefaultScale)
	touchEvents := cls.SubscribeEvents(16)
	go func() {
		for ev := range touchEvents {
			eng.OnTouchEvent(ev)
		}
	}()

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{
		Engine:   eng,
		Port:     apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	st := eng.Snapshot()
	fmt.Printf("\nCompanion is awake: mood %s, engagement %.0f%%.\n",
		st.DominantMood(), st.EngagementLevel()*100)
	fmt.Printf("API: http://localhost:%d/api/v1/state\n", apiPort)
	fmt.Println("Running... (Ctrl+C to stop)")

	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
	eng.Stop()

	// Final save on shutdown.
	if err := db.SaveSnapshot(eng.Snapshot()); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Companion asleep. State saved.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid integer env var, using default", "key", key, "default", fallback)
	}
	return fallback
}
