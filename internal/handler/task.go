package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mfarouk/hunterhall/internal/catalog"
	"github.com/mfarouk/hunterhall/internal/model"
	"github.com/mfarouk/hunterhall/internal/quest"
	"github.com/mfarouk/hunterhall/internal/store"
)

// TaskHandler serves the daily task list and records submissions.
type TaskHandler struct {
	recorder *quest.Recorder
	subs     *store.SubmissionStore
	logger   *slog.Logger
}

func NewTaskHandler(recorder *quest.Recorder, subs *store.SubmissionStore, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{recorder: recorder, subs: subs, logger: logger}
}

// assignedTask is a task joined with today's submission, if any.
type assignedTask struct {
	catalog.Task
	Submission *model.Submission `json:"submission,omitempty"`
}

// Assigned returns the player's task list for today, each entry carrying
// the submission already recorded for it.
func (h *TaskHandler) Assigned(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	now := time.Now()

	tasks, err := h.recorder.AssignedToday(playerID, now)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	subs, err := h.subs.ListForDay(playerID, now.Format(quest.DayFormat))
	if err != nil {
		h.logger.Error("list submissions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]assignedTask, 0, len(tasks))
	for id, task := range tasks {
		entry := assignedTask{Task: task}
		if sub, ok := subs[id]; ok {
			s := sub
			entry.Submission = &s
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}

type submitRequest struct {
	TaskID  string          `json:"task_id"`
	Payload catalog.Payload `json:"payload"`
}

// Submit scores and records a task answer for today, overwriting any
// earlier answer for the same task.
func (h *TaskHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TaskID == "" {
		writeError(w, http.StatusBadRequest, "task_id is required")
		return
	}

	sub, err := h.recorder.Record(r.PathValue("id"), req.TaskID, req.Payload, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// Logs returns the player's submissions for one quest day.
func (h *TaskHandler) Logs(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format(quest.DayFormat)
	} else if _, err := time.Parse(quest.DayFormat, date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	subs, err := h.subs.ListForDay(r.PathValue("id"), date)
	if err != nil {
		h.logger.Error("list submissions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// History returns the player's most recent submissions.
func (h *TaskHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	subs, err := h.subs.History(r.PathValue("id"), limit)
	if err != nil {
		h.logger.Error("submission history", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}
