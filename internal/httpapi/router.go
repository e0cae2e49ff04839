package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evanhutch/helpbot/internal/gateway"
	"github.com/evanhutch/helpbot/internal/health"
	"github.com/evanhutch/helpbot/internal/memory"
	"github.com/evanhutch/helpbot/internal/observability"
)

type Dependencies struct {
	BotName string
	Version string
	Service *gateway.Service
	Memory  memory.Store
	Health  *health.Registry
	Logger  *slog.Logger
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.Handle("/metrics", observability.MetricsHandler())
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	mux.HandleFunc("/api/v1/ask", rt.handleAsk)
	mux.HandleFunc("/api/v1/history", rt.handleHistory)
	return mux
}

func (r *router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *router) handleReady(w http.ResponseWriter, req *http.Request) {
	snapshot := r.deps.Health.Snapshot()
	status := http.StatusOK
	if !snapshot.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, snapshot)
}

func (r *router) handleInfo(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     r.deps.BotName,
		"version":  r.deps.Version,
		"commands": gateway.SlashCommands(),
	})
}

type askRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
}

type askResponse struct {
	Reply string `json:"reply"`
}

func (r *router) handleAsk(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var payload askRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	payload.UserID = strings.TrimSpace(payload.UserID)
	payload.Question = strings.TrimSpace(payload.Question)
	if payload.UserID == "" || payload.Question == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id and question are required"})
		return
	}

	out, err := r.deps.Service.HandleMessage(req.Context(), gateway.MessageInput{
		Kind:       gateway.KindMention,
		Connector:  "http",
		FromUserID: payload.UserID,
		Text:       payload.Question,
	})
	if err != nil {
		r.deps.Logger.Error("ask request failed", "user_id", payload.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Reply: out.Reply})
}

func (r *router) handleHistory(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	userID := strings.TrimSpace(req.URL.Query().Get("user_id"))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id is required"})
		return
	}

	records, err := r.deps.Memory.History(req.Context(), userID)
	if err != nil {
		r.deps.Logger.Error("history request failed", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if records == nil {
		records = []memory.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"records": records,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
