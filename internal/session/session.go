// Package session keeps one survey run per browser tab and hands out signed
// tokens that name it.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mind-engage/mascot-survey/internal/survey"
)

const issuer = "mascot-survey"

// RefreshHeader carries a re-issued token once the presented one is past half
// its lifetime. Clients replace their token with it.
const RefreshHeader = "X-Session-Token"

var (
	ErrBadToken = errors.New("session: invalid token")
	ErrUnknown  = errors.New("session: unknown or expired session")
)

type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type entry struct {
	m        *survey.Machine
	lastSeen time.Time
}

// Registry maps session ids to machines. Sessions idle for longer than the TTL
// are dropped by Sweep. Tokens slide with use through the middleware, so an
// active session never outlives its token.
type Registry struct {
	hmac    []byte
	ttl     time.Duration
	factory func(userAgent string) *survey.Machine
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewRegistry builds machines with factory, passing the user agent of the
// browser that opened the session.
func NewRegistry(secret string, ttl time.Duration, factory func(userAgent string) *survey.Machine) *Registry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Registry{
		hmac:     []byte(secret),
		ttl:      ttl,
		factory:  factory,
		now:      time.Now,
		sessions: map[string]*entry{},
	}
}

// SetClock replaces the time source. Tests only.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

// Create starts a new survey run and returns its id and token.
func (r *Registry) Create(userAgent string) (string, string, *survey.Machine, error) {
	id := uuid.NewString()
	tok, err := r.Issue(id)
	if err != nil {
		return "", "", nil, err
	}
	m := r.factory(userAgent)
	r.mu.Lock()
	r.sessions[id] = &entry{m: m, lastSeen: r.now()}
	r.mu.Unlock()
	return id, tok, m, nil
}

func (r *Registry) Issue(id string) (string, error) {
	now := r.now()
	claims := &Claims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(r.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(r.hmac)
	if err != nil {
		return "", fmt.Errorf("session: sign: %w", err)
	}
	return s, nil
}

func (r *Registry) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return r.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(r.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	c, _ := token.Claims.(*Claims)
	if c.SessionID == "" {
		return nil, ErrBadToken
	}
	return c, nil
}

// Lookup returns the machine of a live session and marks it as used.
func (r *Registry) Lookup(id string) (*survey.Machine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok || r.now().Sub(e.lastSeen) > r.ttl {
		delete(r.sessions, id)
		return nil, ErrUnknown
	}
	e.lastSeen = r.now()
	return e.m, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops idle sessions and reports how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.sessions {
		if r.now().Sub(e.lastSeen) > r.ttl {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

// stale reports whether the token is past half its lifetime.
func (r *Registry) stale(c *Claims) bool {
	if c.IssuedAt == nil {
		return true
	}
	return r.now().Sub(c.IssuedAt.Time) >= r.ttl/2
}

type ctxKey struct{}

func WithMachine(ctx context.Context, m *survey.Machine) context.Context {
	return context.WithValue(ctx, ctxKey{}, m)
}

func MachineFromContext(ctx context.Context) *survey.Machine {
	m, _ := ctx.Value(ctxKey{}).(*survey.Machine)
	return m
}

// Middleware resolves the bearer token to its machine and stores it in the
// request context.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h := req.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			http.Error(w, "missing bearer", http.StatusUnauthorized)
			return
		}
		c, err := r.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}
		m, err := r.Lookup(c.SessionID)
		if err != nil {
			http.Error(w, "session expired", http.StatusUnauthorized)
			return
		}
		if r.stale(c) {
			if tok, err := r.Issue(c.SessionID); err == nil {
				w.Header().Set(RefreshHeader, tok)
			}
		}
		next.ServeHTTP(w, req.WithContext(WithMachine(req.Context(), m)))
	})
}
