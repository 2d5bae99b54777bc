package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/portal"
	"github.com/mfarouk/hunterhall/internal/store"
)

// PortalHandler serves the portal lifecycle: listing open portals, joining,
// starting private ones and reporting completion.
type PortalHandler struct {
	engine  *portal.Engine
	portals *store.PortalStore
	logger  *slog.Logger
}

func NewPortalHandler(engine *portal.Engine, portals *store.PortalStore, logger *slog.Logger) *PortalHandler {
	return &PortalHandler{engine: engine, portals: portals, logger: logger}
}

// portalView is a portal joined with its quest template and party roster.
type portalView struct {
	model.Portal
	Quest        *model.PortalQuest        `json:"quest,omitempty"`
	Participants []model.PortalParticipant `json:"participants"`
}

// List returns open portals (recruiting and active), or portals in one
// status when ?status= is given.
func (h *PortalHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		portals []model.Portal
		err     error
	)
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.PortalStatus(raw)
		switch status {
		case model.PortalRecruiting, model.PortalActive, model.PortalCleared, model.PortalBroken, model.PortalSkipped:
		default:
			writeError(w, http.StatusBadRequest, "invalid portal status")
			return
		}
		portals, err = h.portals.ListByStatus(status)
	} else {
		portals, err = h.portals.ListOpen()
	}
	if err != nil {
		h.logger.Error("list portals", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]portalView, 0, len(portals))
	for _, p := range portals {
		view, err := h.expand(p)
		if err != nil {
			h.logger.Error("expand portal", "portal_id", p.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one portal with its quest and roster.
func (h *PortalHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.portals.Get(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get portal", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "portal not found")
		return
	}
	view, err := h.expand(*p)
	if err != nil {
		h.logger.Error("expand portal", "portal_id", p.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListQuests returns the regular portal quest templates.
func (h *PortalHandler) ListQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := h.portals.ListQuests()
	if err != nil {
		h.logger.Error("list portal quests", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if quests == nil {
		quests = []model.PortalQuest{}
	}
	writeJSON(w, http.StatusOK, quests)
}

type createPortalRequest struct {
	OwnerID string `json:"owner_id"`
	QuestID int64  `json:"quest_id"`
}

// Create opens a private portal owned by the requesting player, who joins
// it immediately.
func (h *PortalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPortalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OwnerID == "" || req.QuestID == 0 {
		writeError(w, http.StatusBadRequest, "owner_id and quest_id are required")
		return
	}

	p, err := h.engine.CreatePrivate(r.Context(), req.OwnerID, req.QuestID, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	view, err := h.expand(*p)
	if err != nil {
		h.logger.Error("expand portal", "portal_id", p.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

type portalActionRequest struct {
	PlayerID string `json:"player_id"`
}

// Join enrolls a player in a recruiting portal, debiting the energy cost.
func (h *PortalHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.engine.Join)
}

// Start launches a private portal; only the owner may do this.
func (h *PortalHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.engine.StartPrivate)
}

// Complete records a participant's clear and pays the reward; the portal
// clears once the whole party is done.
func (h *PortalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.engine.Complete)
}

func (h *PortalHandler) action(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, playerID, portalID string, now time.Time) error) {
	var req portalActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}

	portalID := r.PathValue("id")
	if err := fn(r.Context(), req.PlayerID, portalID, time.Now()); err != nil {
		writeDomainError(w, err)
		return
	}

	p, err := h.portals.Get(portalID)
	if err != nil || p == nil {
		h.logger.Error("reload portal", "portal_id", portalID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	view, err := h.expand(*p)
	if err != nil {
		h.logger.Error("expand portal", "portal_id", p.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// History returns a player's closed portals, newest first.
func (h *PortalHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	portals, err := h.portals.HistoryForPlayer(r.PathValue("id"), limit)
	if err != nil {
		h.logger.Error("portal history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if portals == nil {
		portals = []model.Portal{}
	}
	writeJSON(w, http.StatusOK, portals)
}

func (h *PortalHandler) expand(p model.Portal) (portalView, error) {
	view := portalView{Portal: p, Participants: []model.PortalParticipant{}}

	quest, err := h.portals.GetQuest(p.QuestID)
	if err != nil {
		return view, err
	}
	view.Quest = quest

	participants, err := h.portals.ListParticipants(p.ID)
	if err != nil {
		return view, err
	}
	if participants != nil {
		view.Participants = participants
	}
	return view, nil
}
