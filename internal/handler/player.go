package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/progression"
	"github.com/mfarouk/hunterhall/internal/quest"
	"github.com/mfarouk/hunterhall/internal/store"
)

// PlayerHandler serves registration, profiles, the ability assessment and
// the per-player ledgers (buffs, penalties).
type PlayerHandler struct {
	players   *store.PlayerStore
	buffs     *store.BuffStore
	penalties *store.PenaltyStore
	logger    *slog.Logger
}

func NewPlayerHandler(players *store.PlayerStore, buffs *store.BuffStore, penalties *store.PenaltyStore, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{players: players, buffs: buffs, penalties: penalties, logger: logger}
}

type registerRequest struct {
	ExternalID   string         `json:"external_id"`
	Name         string         `json:"name"`
	Gender       model.Gender   `json:"gender"`
	FaithEnabled bool           `json:"faith_enabled"`
	AgeGroup     model.AgeGroup `json:"age_group"`
	OffDays      []int          `json:"off_days"`
	Intensities  map[string]int `json:"intensities"`
}

// Register creates a player. External ids are unique; registering the same
// one twice is a conflict.
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ExternalID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "external_id and name are required")
		return
	}
	if req.Gender != model.GenderMale && req.Gender != model.GenderFemale {
		writeError(w, http.StatusBadRequest, "gender must be male or female")
		return
	}
	if req.AgeGroup != "" && req.AgeGroup != model.AgeYoung && req.AgeGroup != model.AgeSenior {
		writeError(w, http.StatusBadRequest, "age_group must be young or senior")
		return
	}

	existing, err := h.players.GetByExternalID(req.ExternalID)
	if err != nil {
		h.logger.Error("lookup player", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "player already registered")
		return
	}

	p := &model.Player{
		ExternalID:   req.ExternalID,
		Name:         req.Name,
		Gender:       req.Gender,
		FaithEnabled: req.FaithEnabled,
		AgeGroup:     req.AgeGroup,
		OffDays:      decodeWeekdays(req.OffDays),
		Aspects:      make(map[model.Aspect]model.AspectState, len(model.Aspects)),
	}
	for name, intensity := range req.Intensities {
		a := model.Aspect(name)
		if !a.Valid() {
			writeError(w, http.StatusBadRequest, "unknown aspect: "+name)
			return
		}
		p.Aspects[a] = model.AspectState{Intensity: intensity}
	}

	created, err := h.players.Create(p)
	if err != nil {
		h.logger.Error("create player", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get returns a player by internal id.
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetByExternal returns a player by the id of the chat account they
// registered from.
func (h *PlayerHandler) GetByExternal(w http.ResponseWriter, r *http.Request) {
	p, err := h.players.GetByExternalID(r.PathValue("external_id"))
	if err != nil {
		h.logger.Error("get player by external id", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type settingsRequest struct {
	Name                 *string             `json:"name"`
	Gender               *model.Gender       `json:"gender"`
	FaithEnabled         *bool               `json:"faith_enabled"`
	AgeGroup             *model.AgeGroup     `json:"age_group"`
	OffDays              *[]int              `json:"off_days"`
	Status               *model.PlayerStatus `json:"status"`
	NotificationsEnabled *bool               `json:"notifications_enabled"`
	CurrencyCode         *string             `json:"currency_code"`
	BasePenalty          *int64              `json:"base_penalty"`
}

// UpdateSettings applies a partial profile update. Absent fields keep their
// current values.
func (h *PlayerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Gender != nil {
		if *req.Gender != model.GenderMale && *req.Gender != model.GenderFemale {
			writeError(w, http.StatusBadRequest, "gender must be male or female")
			return
		}
		p.Gender = *req.Gender
	}
	if req.FaithEnabled != nil {
		p.FaithEnabled = *req.FaithEnabled
	}
	if req.AgeGroup != nil {
		if *req.AgeGroup != model.AgeYoung && *req.AgeGroup != model.AgeSenior {
			writeError(w, http.StatusBadRequest, "age_group must be young or senior")
			return
		}
		p.AgeGroup = *req.AgeGroup
	}
	if req.OffDays != nil {
		p.OffDays = decodeWeekdays(*req.OffDays)
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		p.Status = *req.Status
	}
	if req.NotificationsEnabled != nil {
		p.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.CurrencyCode != nil {
		if *req.CurrencyCode == "" {
			writeError(w, http.StatusBadRequest, "currency_code must not be empty")
			return
		}
		p.CurrencyCode = *req.CurrencyCode
	}
	if req.BasePenalty != nil {
		if *req.BasePenalty < 0 {
			writeError(w, http.StatusBadRequest, "base_penalty must not be negative")
			return
		}
		p.BasePenalty = *req.BasePenalty
	}

	if err := h.players.UpdateProfile(p); err != nil {
		h.logger.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	updated, err := h.players.GetByID(p.ID)
	if err != nil {
		h.logger.Error("reload player", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}
	if err := h.players.Delete(p.ID); err != nil {
		h.logger.Error("delete player", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard returns the top players by total experience.
func (h *PlayerHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	players, err := h.players.Leaderboard(limit)
	if err != nil {
		h.logger.Error("leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if players == nil {
		players = []model.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

// AssessmentQuestions returns the questionnaire filtered to the player's
// enabled aspects.
func (h *PlayerHandler) AssessmentQuestions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}
	if p.AssessmentDone {
		writeError(w, http.StatusConflict, "assessment already completed")
		return
	}
	questions := progression.QuestionsForCategories(p.EnabledCategories())
	if questions == nil {
		questions = []progression.AssessmentQuestion{}
	}
	writeJSON(w, http.StatusOK, questions)
}

type assessmentRequest struct {
	Points map[string]int `json:"points"`
}

// SubmitAssessment scores the questionnaire and places the player on the
// curve. One shot per player.
func (h *PlayerHandler) SubmitAssessment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}

	var req assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for name := range req.Points {
		if !model.Aspect(name).Valid() {
			writeError(w, http.StatusBadRequest, "unknown aspect: "+name)
			return
		}
	}

	updated, err := quest.ApplyAssessment(h.players, p.ID, req.Points)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ListBuffs returns the player's active buffs.
func (h *PlayerHandler) ListBuffs(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}
	buffs, err := h.buffs.ListActive(p.ID, time.Now())
	if err != nil {
		h.logger.Error("list buffs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if buffs == nil {
		buffs = []model.Buff{}
	}
	writeJSON(w, http.StatusOK, buffs)
}

type buffRequest struct {
	Kind       model.BuffKind `json:"kind"`
	Category   string         `json:"category"`
	Multiplier float64        `json:"multiplier"`
	ExpiresIn  int            `json:"expires_in_hours"`
}

// CreateBuff grants a buff, e.g. when a consumable from the shop is used.
func (h *PlayerHandler) CreateBuff(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}

	var req buffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind != model.BuffStreakProtection && req.Kind != model.BuffXPMultiplier {
		writeError(w, http.StatusBadRequest, "unknown buff kind")
		return
	}
	if req.Category != "" && req.Category != model.BuffCategoryAll && !model.Aspect(req.Category).Valid() {
		writeError(w, http.StatusBadRequest, "unknown buff category")
		return
	}

	b := &model.Buff{
		PlayerID:   p.ID,
		Kind:       req.Kind,
		Category:   req.Category,
		Multiplier: req.Multiplier,
	}
	if req.ExpiresIn > 0 {
		exp := time.Now().Add(time.Duration(req.ExpiresIn) * time.Hour)
		b.ExpiresAt = &exp
	}

	created, err := h.buffs.Create(b)
	if err != nil {
		h.logger.Error("create buff", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListPenalties returns the player's unresolved penalties.
func (h *PlayerHandler) ListPenalties(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPlayer(w, r)
	if !ok {
		return
	}
	penalties, err := h.penalties.ListPending(p.ID)
	if err != nil {
		h.logger.Error("list penalties", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if penalties == nil {
		penalties = []model.Penalty{}
	}
	writeJSON(w, http.StatusOK, penalties)
}

type resolvePenaltyRequest struct {
	ProofURL string `json:"proof_url"`
}

// ResolvePenalty settles a pending penalty against submitted proof.
func (h *PlayerHandler) ResolvePenalty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid penalty id")
		return
	}

	var req resolvePenaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProofURL == "" {
		writeError(w, http.StatusBadRequest, "proof_url is required")
		return
	}

	ok, err := h.penalties.Resolve(id, req.ProofURL, time.Now())
	if err != nil {
		h.logger.Error("resolve penalty", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "penalty is not pending")
		return
	}

	resolved, err := h.penalties.GetByID(id)
	if err != nil {
		h.logger.Error("reload penalty", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, resolved)
}

// loadPlayer resolves the {id} path parameter to a player, writing the
// error response itself when that fails.
func (h *PlayerHandler) loadPlayer(w http.ResponseWriter, r *http.Request) (*model.Player, bool) {
	p, err := h.players.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get player", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return nil, false
	}
	return p, true
}

func decodeWeekdays(days []int) []time.Weekday {
	var out []time.Weekday
	for _, d := range days {
		if d < 0 || d > 6 {
			continue
		}
		out = append(out, time.Weekday(d))
	}
	return out
}
