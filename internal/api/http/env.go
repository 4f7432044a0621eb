package http

import (
	"net/http"

	"github.com/mind-engage/mascot-survey/internal/config"
	"github.com/mind-engage/mascot-survey/internal/guard"
)

type envReport struct {
	Ready                  bool     `json:"ready"`
	Missing                []string `json:"missing"`
	Notices                []string `json:"notices"`
	CaptchaDisabled        bool     `json:"captchaDisabled"`
	RecaptchaSiteKey       string   `json:"recaptchaSiteKey,omitempty"`
	SubmissionCheckEnabled bool     `json:"submissionCheckEnabled"`
	RecordedSubmissions    int      `json:"recordedSubmissions"`
}

// GET /env -> configuration problems and active escape hatches
func EnvHandler(cfg config.Config, g *guard.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		missing := cfg.Missing()
		rep := envReport{
			Ready:                  len(missing) == 0,
			Missing:                append([]string{}, missing...),
			Notices:                append([]string{}, cfg.Notices()...),
			CaptchaDisabled:        cfg.DisableCaptcha,
			RecaptchaSiteKey:       cfg.RecaptchaSiteKey,
			SubmissionCheckEnabled: !g.Disabled(),
		}
		if recs, err := g.Records(r.Context()); err == nil {
			rep.RecordedSubmissions = len(recs)
		}
		writeJSON(w, http.StatusOK, rep)
	}
}
