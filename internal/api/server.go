// Package api provides the HTTP surface for observing the companion.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane) and inject
// signals through the same serialized engine path as every collaborator.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/companion/internal/emotion"
	"github.com/talgya/companion/internal/engine"
)

// Server serves the companion state over HTTP.
type Server struct {
	Engine   *engine.Engine
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	startedAt time.Time
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.startedAt = time.Now()

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check in on the companion).
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/behavior", s.handleBehavior)
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/reset", s.adminOnly(s.handleReset))
	mux.HandleFunc("/api/v1/event", s.adminOnly(s.handleEvent))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminOnly gates a handler behind the bearer admin key.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}
		auth := r.Header.Get("Authorization")
		if auth != "Bearer "+s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}

type stateResponse struct {
	emotion.State
	Mood       emotion.Mood `json:"mood"`
	Excitement float64      `json:"excitement"`
	Engagement float64      `json:"engagement"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := s.Engine.Snapshot()
	writeJSON(w, stateResponse{
		State:      st,
		Mood:       st.DominantMood(),
		Excitement: st.ExcitementLevel(),
		Engagement: st.EngagementLevel(),
	})
}

func (s *Server) handleBehavior(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	b := s.Engine.SelectBehavior()
	writeJSON(w, map[string]any{
		"behavior":     b.String(),
		"presentation": b.Presentation(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := s.Engine.Snapshot()
	writeJSON(w, map[string]any{
		"uptime":     humanize.RelTime(s.startedAt, time.Now(), "", ""),
		"commits":    humanize.Comma(int64(s.Engine.Commits())),
		"mood":       st.DominantMood(),
		"engagement": fmt.Sprintf("%.0f%%", st.EngagementLevel()*100),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.Engine.Events())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.Engine.Reset()
	writeJSON(w, map[string]string{"status": "reset"})
}

// eventRequest injects an external signal. type is one of: face_detected,
// face_lost, sentiment, interaction, positive, negative, play, dance_decay.
type eventRequest struct {
	Type  string  `json:"type"`
	Value float64 `json:"value,omitempty"` // proximity or sentiment score
	Mode  string  `json:"mode,omitempty"`  // play-mode kind name
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Type {
	case "face_detected":
		s.Engine.OnFaceDetected(req.Value, 0)
	case "face_lost":
		s.Engine.OnFaceLost()
	case "sentiment":
		s.Engine.OnSpeechSentiment(req.Value)
	case "interaction":
		s.Engine.OnInteraction()
	case "positive":
		s.Engine.OnPositiveOutcome()
	case "negative":
		s.Engine.OnNegativeOutcome()
	case "dance_decay":
		s.Engine.OnDanceEnergyDecay()
	case "play":
		mode, ok := engine.ParsePlayMode(req.Mode)
		if !ok {
			http.Error(w, "unknown play mode: "+req.Mode, http.StatusBadRequest)
			return
		}
		s.Engine.OnPlayModeEvent(mode)
	default:
		http.Error(w, "unknown event type: "+req.Type, http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]string{"status": "accepted"})
}
