// Package guard answers whether this device has already submitted the survey
// and records new submissions, keyed by the device fingerprint.
package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mind-engage/mascot-survey/internal/fingerprint"
	"github.com/mind-engage/mascot-survey/internal/kv"
)

// StoreKey is the persisted key holding fingerprint -> Record as JSON.
const StoreKey = "surveySubmissions"

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type Record struct {
	Timestamp string `json:"timestamp"`
	UserAgent string `json:"userAgent"`
}

type Guard struct {
	store     kv.Store
	fp        fingerprint.Provider
	disabled  bool
	userAgent string
	now       func() time.Time
	log       *slog.Logger
}

type Option func(*Guard)

// WithDisabled turns HasSubmitted into a constant false. MarkSubmitted still
// records.
func WithDisabled(disabled bool) Option { return func(g *Guard) { g.disabled = disabled } }

// WithUserAgent sets the user agent recorded when MarkSubmitted gets none.
func WithUserAgent(ua string) Option { return func(g *Guard) { g.userAgent = ua } }

func WithClock(now func() time.Time) Option { return func(g *Guard) { g.now = now } }

func WithLogger(l *slog.Logger) Option { return func(g *Guard) { g.log = l } }

func New(store kv.Store, fp fingerprint.Provider, opts ...Option) *Guard {
	g := &Guard{
		store: store,
		fp:    fingerprint.Memo(fp),
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Guard) Disabled() bool { return g.disabled }

func (g *Guard) HasSubmitted(ctx context.Context) (bool, error) {
	if g.disabled {
		return false, nil
	}
	id, err := g.fp.Fingerprint(ctx)
	if err != nil {
		return false, fmt.Errorf("guard: resolve fingerprint: %w", err)
	}
	subs, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	_, ok := subs[id]
	return ok, nil
}

// MarkSubmitted upserts the record for this device with the respondent's user
// agent. The read-modify-write is not atomic across processes; the last writer
// wins.
func (g *Guard) MarkSubmitted(ctx context.Context, userAgent string) error {
	id, err := g.fp.Fingerprint(ctx)
	if err != nil {
		return fmt.Errorf("guard: resolve fingerprint: %w", err)
	}
	subs, err := g.load(ctx)
	if err != nil {
		return err
	}
	if userAgent == "" {
		userAgent = g.userAgent
	}
	subs[id] = Record{
		Timestamp: g.now().UTC().Format(TimestampLayout),
		UserAgent: userAgent,
	}
	raw, err := json.Marshal(subs)
	if err != nil {
		return fmt.Errorf("guard: encode submissions: %w", err)
	}
	if err := g.store.Set(ctx, StoreKey, string(raw)); err != nil {
		return fmt.Errorf("guard: write submissions: %w", err)
	}
	return nil
}

// Records returns a copy of the persisted submission map.
func (g *Guard) Records(ctx context.Context) (map[string]Record, error) {
	return g.load(ctx)
}

func (g *Guard) load(ctx context.Context) (map[string]Record, error) {
	raw, ok, err := g.store.Get(ctx, StoreKey)
	if err != nil {
		return nil, fmt.Errorf("guard: read submissions: %w", err)
	}
	subs := map[string]Record{}
	if !ok || raw == "" {
		return subs, nil
	}
	if err := json.Unmarshal([]byte(raw), &subs); err != nil || subs == nil {
		g.log.Warn("ignoring unreadable submission map", "key", StoreKey, "err", err)
		return map[string]Record{}, nil
	}
	return subs, nil
}
