package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/mascot-survey/internal/survey"
	"github.com/mind-engage/mascot-survey/internal/validation"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type failure struct {
	Error  string            `json:"error"`
	Fields validation.Errors `json:"fields,omitempty"`
	State  survey.State      `json:"state"`
}

// writeFailure maps a transition error to its status and echoes the state so
// the front end can re-render.
func writeFailure(w http.ResponseWriter, m *survey.Machine, err error, fields validation.Errors) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, survey.ErrUnknownField):
		code = http.StatusBadRequest
	case errors.Is(err, survey.ErrIllegalTransition),
		errors.Is(err, survey.ErrConsentRequired),
		errors.Is(err, survey.ErrBusy):
		code = http.StatusConflict
	case errors.Is(err, survey.ErrInvalidForm),
		errors.Is(err, survey.ErrIncompleteRankings):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, survey.ErrSubmitFailed):
		code = http.StatusBadGateway
	}
	writeJSON(w, code, failure{Error: err.Error(), Fields: fields, State: m.Snapshot()})
}

func isTransitionError(err error) bool {
	return errors.Is(err, survey.ErrIllegalTransition)
}
