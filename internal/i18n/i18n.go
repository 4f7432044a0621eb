// Package i18n carries the survey texts in Dutch and English and the
// persisted language choice.
package i18n

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/mind-engage/mascot-survey/internal/kv"
	"github.com/mind-engage/mascot-survey/internal/validation"
)

type Lang string

const (
	NL Lang = "nl"
	EN Lang = "en"
)

// Default is the language used when nothing else applies.
const Default = NL

// StoreKey is the persisted key of the language preference.
const StoreKey = "lang"

var Supported = []Lang{NL, EN}

var matcher = language.NewMatcher([]language.Tag{language.Dutch, language.English})

// Parse accepts a supported language code, case-insensitively.
func Parse(s string) (Lang, bool) {
	switch Lang(strings.ToLower(strings.TrimSpace(s))) {
	case NL:
		return NL, true
	case EN:
		return EN, true
	}
	return "", false
}

// Negotiate picks a supported language from an Accept-Language header.
func Negotiate(acceptLanguage string) Lang {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}

// Messages returns the validation texts for l.
func (l Lang) Messages() validation.Messages {
	return validation.MessagesFor(string(l))
}

// Preference is the language choice kept in the local store.
type Preference struct {
	store    kv.Store
	fallback Lang
}

func NewPreference(store kv.Store, fallback Lang) *Preference {
	if _, ok := Parse(string(fallback)); !ok {
		fallback = Default
	}
	return &Preference{store: store, fallback: fallback}
}

// Get returns the stored language, or the fallback when none or an unknown
// value is stored.
func (p *Preference) Get(ctx context.Context) (Lang, error) {
	v, ok, err := p.store.Get(ctx, StoreKey)
	if err != nil {
		return p.fallback, fmt.Errorf("i18n: read preference: %w", err)
	}
	if !ok {
		return p.fallback, nil
	}
	if l, ok := Parse(v); ok {
		return l, nil
	}
	return p.fallback, nil
}

func (p *Preference) Set(ctx context.Context, l Lang) error {
	if _, ok := Parse(string(l)); !ok {
		return fmt.Errorf("i18n: unsupported language %q", l)
	}
	if err := p.store.Set(ctx, StoreKey, string(l)); err != nil {
		return fmt.Errorf("i18n: write preference: %w", err)
	}
	return nil
}
