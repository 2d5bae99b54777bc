package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mfarouk/hunterhall/internal/portal"
	"github.com/mfarouk/hunterhall/internal/quest"
	"github.com/mfarouk/hunterhall/internal/store"
)

// AdminHandler exposes the engine triggers and tunables behind the admin
// claim. The schedulers call the same entry points on their own; these
// endpoints exist for manual recovery and ops.
type AdminHandler struct {
	launcher *quest.Launcher
	judge    *quest.Judge
	engine   *portal.Engine
	config   *store.ConfigStore
	logger   *slog.Logger
}

func NewAdminHandler(launcher *quest.Launcher, judge *quest.Judge, engine *portal.Engine, config *store.ConfigStore, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{launcher: launcher, judge: judge, engine: engine, config: config, logger: logger}
}

// Launch triggers the daily quest launch. The per-day idempotency stamp
// still applies, so a repeat call reports ran=false.
func (h *AdminHandler) Launch(w http.ResponseWriter, r *http.Request) {
	ran, err := h.launcher.LaunchDaily(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("manual launch", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ran": ran})
}

// Judge triggers the daily judgment cycle, subject to the same per-day
// idempotency stamp as the scheduled run.
func (h *AdminHandler) Judge(w http.ResponseWriter, r *http.Request) {
	ran, err := h.judge.Run(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("manual judgment", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ran": ran})
}

// PortalTick runs one portal maintenance pass: expire overdue portals,
// then consider a spawn.
func (h *AdminHandler) PortalTick(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Tick(r.Context(), time.Now()); err != nil {
		h.logger.Error("manual portal tick", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ran": true})
}

type portalIntervalRequest struct {
	Hours int `json:"hours"`
}

// SetPortalInterval changes the minimum gap between public portal spawns.
func (h *AdminHandler) SetPortalInterval(w http.ResponseWriter, r *http.Request) {
	var req portalIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Hours < 1 || req.Hours > 24 {
		writeError(w, http.StatusBadRequest, "hours must be between 1 and 24")
		return
	}
	if err := h.config.Set(store.KeyPortalIntervalHrs, strconv.Itoa(req.Hours)); err != nil {
		h.logger.Error("set portal interval", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"hours": req.Hours})
}
