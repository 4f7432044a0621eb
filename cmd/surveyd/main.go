package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/mascot-survey/internal/api/http"
	"github.com/mind-engage/mascot-survey/internal/assets"
	"github.com/mind-engage/mascot-survey/internal/captcha"
	"github.com/mind-engage/mascot-survey/internal/catalog"
	"github.com/mind-engage/mascot-survey/internal/config"
	"github.com/mind-engage/mascot-survey/internal/fingerprint"
	"github.com/mind-engage/mascot-survey/internal/guard"
	"github.com/mind-engage/mascot-survey/internal/i18n"
	"github.com/mind-engage/mascot-survey/internal/kv"
	"github.com/mind-engage/mascot-survey/internal/session"
	"github.com/mind-engage/mascot-survey/internal/sheetdb"
	"github.com/mind-engage/mascot-survey/internal/survey"
	"github.com/mind-engage/mascot-survey/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Store ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	store, closeStore, err := kv.Open(openCtx, kv.Driver(cfg.StoreDriver), cfg.StoreDSN)
	cancel()
	if err != nil {
		log.Error("store open failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	// --- Catalog ---
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.LoadFile(cfg.CatalogPath); err != nil {
			log.Error("catalog load failed", "path", cfg.CatalogPath, "err", err)
			os.Exit(1)
		}
	}

	// --- Submission guard + sink ---
	g := guard.New(store, fingerprint.NewDevice(cfg.FingerprintSalt),
		guard.WithDisabled(cfg.DisableSubmissionCheck),
		guard.WithLogger(log),
	)
	sink := sheetdb.New(sheetdb.Config{
		Endpoint:     cfg.SheetDBAPI,
		Token:        cfg.SheetDBToken,
		TokenURL:     cfg.SheetDBTokenURL,
		ClientID:     cfg.SheetDBClientID,
		ClientSecret: cfg.SheetDBClientSecret,
	})

	var verifier captcha.Verifier = captcha.Bypass{}
	if !cfg.DisableCaptcha {
		rc := captcha.NewReCAPTCHA(cfg.RecaptchaSecret)
		rc.Log = log
		verifier = rc
	}

	bs, err := assets.NewFSStore(cfg.AssetBasePath)
	if err != nil {
		log.Error("asset store", "path", cfg.AssetBasePath, "err", err)
		os.Exit(1)
	}

	bounds := validation.Bounds{AgeMin: cfg.AgeMin, AgeMax: cfg.AgeMax}
	reg := session.NewRegistry(cfg.SessionSecret, cfg.SessionTTL, func(ua string) *survey.Machine {
		return survey.New(cat, g, sink,
			survey.WithBounds(bounds),
			survey.WithUserAgent(ua),
			survey.WithLogger(log),
		)
	})
	go reg.Run(ctx, time.Minute)

	fallback, ok := i18n.Parse(cfg.DefaultLang)
	if !ok {
		fallback = i18n.Default
	}

	r := api.NewRouter(api.Deps{
		Config:     cfg,
		Catalog:    cat,
		Sessions:   reg,
		Verifier:   verifier,
		Guard:      g,
		Preference: i18n.NewPreference(store, fallback),
		Assets:     assets.NewResolver(bs, cat, log),
		Logger:     log,
	})

	for _, k := range cfg.Missing() {
		log.Warn("missing configuration", "key", k)
	}
	for _, n := range cfg.Notices() {
		log.Warn(n)
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Info("listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "questions", cat.Len())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
