package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mascot-survey/internal/assets"
	"github.com/mind-engage/mascot-survey/internal/captcha"
	"github.com/mind-engage/mascot-survey/internal/catalog"
	"github.com/mind-engage/mascot-survey/internal/config"
	"github.com/mind-engage/mascot-survey/internal/guard"
	"github.com/mind-engage/mascot-survey/internal/i18n"
	"github.com/mind-engage/mascot-survey/internal/session"
	"github.com/mind-engage/mascot-survey/internal/survey"
)

type Deps struct {
	Config     config.Config
	Catalog    *catalog.Catalog
	Sessions   *session.Registry
	Verifier   captcha.Verifier
	Guard      *guard.Guard
	Preference *i18n.Preference
	Assets     *assets.Resolver
	Logger     *slog.Logger
}

func NewRouter(d Deps) chi.Router {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
		ExposedHeaders:   []string{"Content-Length", "X-Asset-Fallback", session.RefreshHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/session", CreateSessionHandler(d.Sessions, d.Preference, log))

	// one survey run per bearer token
	r.Group(func(pr chi.Router) {
		pr.Use(d.Sessions.Middleware, withLanguage(d.Preference))

		pr.Get("/state", StateHandler())
		pr.Post("/verify", VerifyHandler(d.Verifier, log))
		pr.Post("/consent", ConsentHandler())
		pr.Post("/start", TransitionHandler((*survey.Machine).Start))
		pr.Post("/reorder", ReorderHandler())
		pr.Post("/next", TransitionHandler((*survey.Machine).Next))
		pr.Post("/back", TransitionHandler((*survey.Machine).Back))
		pr.Put("/form", FormHandler())
		pr.Post("/submit", SubmitHandler())
	})

	r.Get("/lang", GetLangHandler(d.Preference))
	r.Put("/lang", PutLangHandler(d.Preference))
	r.Get("/i18n/{lang}", BundleHandler(d.Catalog))
	r.Route("/mascots", func(ar chi.Router) {
		MountAssets(ar, d.Assets)
	})
	r.Get("/env", EnvHandler(d.Config, d.Guard))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	return r
}
