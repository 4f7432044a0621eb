package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/mind-engage/mascot-survey/internal/captcha"
	"github.com/mind-engage/mascot-survey/internal/i18n"
	"github.com/mind-engage/mascot-survey/internal/session"
	"github.com/mind-engage/mascot-survey/internal/survey"
)

// POST /session -> {token, session_id, state}
func CreateSessionHandler(reg *session.Registry, pref *i18n.Preference, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, tok, m, err := reg.Create(r.UserAgent())
		if err != nil {
			http.Error(w, "issue token", 500)
			return
		}
		if lang, err := pref.Get(r.Context()); err == nil {
			m.SetMessages(lang.Messages())
		}
		// a failed check leaves the run in verification; /verify retries it
		if err := m.Init(r.Context()); err != nil {
			log.Warn("startup submission check failed", "session", id, "err", err)
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"token":      tok,
			"session_id": id,
			"state":      m.Snapshot(),
		})
	}
}

func StateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, session.MachineFromContext(r.Context()).Snapshot())
	}
}

// POST /verify {token}
func VerifyHandler(v captcha.Verifier, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := session.MachineFromContext(r.Context())
		var req struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		ok, err := v.Verify(r.Context(), req.Token, clientIP(r))
		if err != nil {
			log.Warn("captcha verification failed", "err", err)
			http.Error(w, "verifier unavailable", http.StatusBadGateway)
			return
		}
		if err := m.Verify(r.Context(), ok); err != nil {
			if isTransitionError(err) {
				writeFailure(w, m, err, nil)
				return
			}
			writeJSON(w, http.StatusServiceUnavailable, failure{Error: err.Error(), State: m.Snapshot()})
			return
		}
		writeJSON(w, http.StatusOK, m.Snapshot())
	}
}

// POST /consent {accepted}
func ConsentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := session.MachineFromContext(r.Context())
		var req struct {
			Accepted bool `json:"accepted"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if err := m.SetConsent(req.Accepted); err != nil {
			writeFailure(w, m, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, m.Snapshot())
	}
}

// TransitionHandler serves the body-less transitions: start, next, back.
func TransitionHandler(step func(*survey.Machine) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := session.MachineFromContext(r.Context())
		if err := step(m); err != nil {
			writeFailure(w, m, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, m.Snapshot())
	}
}

// POST /reorder {active, over}
func ReorderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := session.MachineFromContext(r.Context())
		var req struct {
			Active string `json:"active"`
			Over   string `json:"over"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		m.Reorder(req.Active, req.Over)
		writeJSON(w, http.StatusOK, m.Snapshot())
	}
}

// PUT /form {field: value, ...}
func FormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := session.MachineFromContext(r.Context())
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		var req map[string]any
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		fields := make(map[string]string, len(req))
		for name, v := range req {
			if v != nil {
				fields[name] = fmt.Sprint(v)
			} else {
				fields[name] = ""
			}
		}
		if err := m.UpdateFields(fields); err != nil {
			writeFailure(w, m, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, m.Snapshot())
	}
}

// POST /submit
func SubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := session.MachineFromContext(r.Context())
		fields, err := m.Submit(r.Context())
		if err != nil {
			writeFailure(w, m, err, fields)
			return
		}
		writeJSON(w, http.StatusOK, m.Snapshot())
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
