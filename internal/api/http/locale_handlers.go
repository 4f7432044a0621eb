package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mascot-survey/internal/catalog"
	"github.com/mind-engage/mascot-survey/internal/i18n"
	"github.com/mind-engage/mascot-survey/internal/session"
)

// GET /lang -> {lang}
func GetLangHandler(pref *i18n.Preference) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := pref.Get(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, map[string]i18n.Lang{"lang": l})
	}
}

// PUT /lang {lang}
func PutLangHandler(pref *i18n.Preference) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Lang string `json:"lang"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		l, ok := i18n.Parse(req.Lang)
		if !ok {
			http.Error(w, "unsupported language", 400)
			return
		}
		if err := pref.Set(r.Context(), l); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, http.StatusOK, map[string]i18n.Lang{"lang": l})
	}
}

// GET /i18n/{lang}; "auto" negotiates from Accept-Language.
func BundleHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "lang")
		l, ok := i18n.Parse(raw)
		if !ok && raw == "auto" {
			l, ok = i18n.Negotiate(r.Header.Get("Accept-Language")), true
		}
		if !ok {
			http.Error(w, "unsupported language", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, i18n.For(l, cat))
	}
}

// withLanguage keeps the session's validation texts in the stored language.
func withLanguage(pref *i18n.Preference) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m := session.MachineFromContext(r.Context()); m != nil {
				if l, err := pref.Get(r.Context()); err == nil {
					m.SetMessages(l.Messages())
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
