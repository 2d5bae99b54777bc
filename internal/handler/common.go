package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mfarouk/hunterhall/internal/catalog"
	"github.com/mfarouk/hunterhall/internal/portal"
	"github.com/mfarouk/hunterhall/internal/quest"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the engines' sentinel errors onto HTTP statuses:
// not-found is a normal control-flow outcome, precondition violations get
// a specific reason, anything else is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quest.ErrPlayerNotFound),
		errors.Is(err, quest.ErrUnknownTask),
		errors.Is(err, portal.ErrPortalNotFound),
		errors.Is(err, portal.ErrQuestNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, catalog.ErrUnknownOption):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, portal.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, quest.ErrTaskNotAssigned),
		errors.Is(err, quest.ErrAspectDisabled),
		errors.Is(err, quest.ErrAssessmentDone),
		errors.Is(err, portal.ErrNotRecruiting),
		errors.Is(err, portal.ErrNotActive),
		errors.Is(err, portal.ErrAlreadyJoined),
		errors.Is(err, portal.ErrAlreadyCompleted),
		errors.Is(err, portal.ErrInsufficientEnergy),
		errors.Is(err, portal.ErrNotParticipant),
		errors.Is(err, portal.ErrTooSoon):
		writeError(w, http.StatusConflict, err.Error())

	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
