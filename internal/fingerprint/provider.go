// Package fingerprint produces the per-device identifier used as the
// duplicate-submission key. It is not an identity and carries no security
// guarantee.
package fingerprint

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

var ErrUnavailable = errors.New("fingerprint: device identifier unavailable")

type Provider interface {
	Fingerprint(ctx context.Context) (string, error)
}

type ProviderFunc func(ctx context.Context) (string, error)

func (f ProviderFunc) Fingerprint(ctx context.Context) (string, error) { return f(ctx) }

type memo struct {
	p     Provider
	group singleflight.Group

	mu       sync.RWMutex
	id       string
	resolved bool
}

// Memo wraps p so the identifier is computed at most once per process.
// Concurrent callers share one in-flight computation. Failures are not
// cached, so the next call tries again.
func Memo(p Provider) Provider {
	if m, ok := p.(*memo); ok {
		return m
	}
	return &memo{p: p}
}

func (m *memo) Fingerprint(ctx context.Context) (string, error) {
	m.mu.RLock()
	if m.resolved {
		id := m.id
		m.mu.RUnlock()
		return id, nil
	}
	m.mu.RUnlock()

	ch := m.group.DoChan("fingerprint", func() (interface{}, error) {
		id, err := m.p.Fingerprint(ctx)
		if err != nil {
			return "", err
		}
		m.mu.Lock()
		m.id, m.resolved = id, true
		m.mu.Unlock()
		return id, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
