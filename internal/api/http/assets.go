package http

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mascot-survey/internal/assets"
)

func MountAssets(r chi.Router, res *assets.Resolver) {
	// GET /mascots/{questionID}/{optionID} -> option image, placeholder when missing
	r.Get("/{questionID}/{optionID}", func(w http.ResponseWriter, r *http.Request) {
		a, err := res.Open(chi.URLParam(r, "questionID"), chi.URLParam(r, "optionID"))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer a.Close()
		w.Header().Set("Content-Type", assets.ContentType(a.Key))
		if a.Fallback {
			w.Header().Set("X-Asset-Fallback", "1")
			w.Header().Set("Cache-Control", "no-store")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		_, _ = io.Copy(w, a)
	})
}
