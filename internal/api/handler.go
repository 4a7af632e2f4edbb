// Package api serves the engine over HTTP for collaborating apps.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/slayken/slayken/internal/engine"
	"github.com/slayken/slayken/internal/metrics"
	"github.com/slayken/slayken/internal/missions"
	"github.com/slayken/slayken/internal/store"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine         *engine.Engine
	metrics        *metrics.Metrics
	allowedOrigins []string
	logger         *zap.Logger
}

// NewHandler creates a new API handler. m may be nil, in which case
// /metrics is not served.
func NewHandler(e *engine.Engine, m *metrics.Metrics, allowedOrigins []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Handler{
		engine:         e,
		metrics:        m,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", h.healthCheck)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/account", h.getAccount)
		r.Get("/missions", h.listMissions)
		r.Post("/events", h.postEvent)
		r.Post("/xp", h.postXP)
		r.Post("/reset", h.postReset)
		r.Get("/history", h.getHistory)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.State(r.Context()).Account)
}

func (h *Handler) listMissions(w http.ResponseWriter, r *http.Request) {
	rows := h.engine.State(r.Context()).Missions
	if c := r.URL.Query().Get("category"); c != "" {
		cat := missions.Category(c)
		if !cat.IsValid() {
			writeError(w, http.StatusBadRequest, "unknown category "+strconv.Quote(c))
			return
		}
		filtered := rows[:0]
		for _, row := range rows {
			if row.Mission.Category == cat {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	writeJSON(w, http.StatusOK, rows)
}

type eventRequest struct {
	Kind string `json:"kind"`
	N    int    `json:"n"`
}

func (h *Handler) postEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	event, err := missions.ParseEvent(req.Kind, req.N)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := h.engine.Dispatch(r.Context(), event)
	if err != nil {
		h.logger.Error("dispatch failed", zap.String("kind", req.Kind), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type xpRequest struct {
	Amount int `json:"amount"`
}

func (h *Handler) postXP(w http.ResponseWriter, r *http.Request) {
	var req xpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}
	writeJSON(w, http.StatusOK, h.engine.AddXP(r.Context(), req.Amount))
}

type resetRequest struct {
	Account  bool `json:"account"`
	Missions bool `json:"missions"`
}

func (h *Handler) postReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Account && !req.Missions {
		writeError(w, http.StatusBadRequest, "nothing to reset")
		return
	}
	if req.Account {
		h.engine.ResetAccount(r.Context())
	}
	if req.Missions {
		h.engine.ResetMissions(r.Context())
	}
	writeJSON(w, http.StatusOK, h.engine.State(r.Context()))
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	opts := store.QueryOpts{Limit: 50, Kind: r.URL.Query().Get("kind")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = n
	}
	records, err := h.engine.History(r.Context(), opts)
	if err != nil {
		h.logger.Error("query history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query history failed")
		return
	}
	if records == nil {
		records = []store.AwardEventRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
