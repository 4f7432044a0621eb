// Package validation holds the pure checks that gate a survey submission: the
// demographic form and the completeness of the committed rankings.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mind-engage/mascot-survey/internal/catalog"
)

// Field names used as keys of Errors.
const (
	FieldAge        = "age"
	FieldGender     = "gender"
	FieldEducation  = "education"
	FieldPrizeEmail = "prizeEmail"
)

// Form is the demographic section. Age 0 means the field was left empty.
type Form struct {
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	Education  string `json:"education"`
	PrizeEmail string `json:"prizeEmail,omitempty"`
}

// Errors maps a field name to its message. Empty means the form is valid.
type Errors map[string]string

func (e Errors) Valid() bool { return len(e) == 0 }

// Bounds is the inclusive accepted age range.
type Bounds struct {
	AgeMin int
	AgeMax int
}

var DefaultBounds = Bounds{AgeMin: 12, AgeMax: 99}

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Demographics checks every field and reports one message per failing field.
func Demographics(f Form, b Bounds, m Messages) Errors {
	errs := Errors{}
	switch {
	case f.Age == 0:
		errs[FieldAge] = m.AgeRequired
	case f.Age < b.AgeMin || f.Age > b.AgeMax:
		errs[FieldAge] = m.ageRange(b)
	}
	if strings.TrimSpace(f.Gender) == "" {
		errs[FieldGender] = m.GenderRequired
	}
	if strings.TrimSpace(f.Education) == "" {
		errs[FieldEducation] = m.EducationRequired
	}
	if f.PrizeEmail != "" && !emailRE.MatchString(f.PrizeEmail) {
		errs[FieldPrizeEmail] = m.EmailInvalid
	}
	return errs
}

// Rankings reports whether answers hold a complete, duplicate-free ranking for
// every catalog question. Keys that match no question are ignored.
func Rankings[R ~[]string](answers map[string]R, questions []catalog.Question) bool {
	for _, q := range questions {
		r, ok := answers[q.ID]
		if !ok || len(r) != len(q.Options) {
			return false
		}
	}
	known := make(map[string]int, len(questions))
	for _, q := range questions {
		known[q.ID] = len(q.Options)
	}
	for id, r := range answers {
		want, ok := known[id]
		if !ok {
			continue
		}
		distinct := make(map[string]struct{}, len(r))
		for _, o := range r {
			distinct[o] = struct{}{}
		}
		if len(distinct) != want {
			return false
		}
	}
	return true
}

// AgeFromString parses the age text input. Empty input is 0.
func AgeFromString(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("validation: age %q: %w", s, err)
	}
	return n, nil
}
