// Package catalog holds the ordered ranking questions and the display labels
// of their options. A Catalog is immutable once built.
package catalog

import (
	"errors"
	"fmt"
)

// OptionCount is the number of options every question carries.
const OptionCount = 5

var (
	ErrEmptyID           = errors.New("catalog: empty identifier")
	ErrDuplicateQuestion = errors.New("catalog: duplicate question id")
	ErrOptionCount       = fmt.Errorf("catalog: question must have exactly %d options", OptionCount)
	ErrDuplicateOption   = errors.New("catalog: duplicate option within question")
	ErrUnknownOption     = errors.New("catalog: label for unknown option")
	ErrVersion           = errors.New("catalog: unsupported catalog version")
	ErrSchema            = errors.New("catalog: document does not match schema")
)

type Question struct {
	ID      string   `json:"id"`
	Options []string `json:"options"`
}

// Has reports whether opt is one of the question's options.
func (q Question) Has(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// LabelKey addresses one display label by stable identifiers.
type LabelKey struct {
	QuestionID string
	OptionID   string
	Lang       string
}

type Labels map[LabelKey]string

type Catalog struct {
	questions []Question
	index     map[string]int
	labels    Labels
}

// New validates questions and labels and returns an immutable catalog. An empty
// question list is allowed.
func New(questions []Question, labels Labels) (*Catalog, error) {
	c := &Catalog{
		questions: make([]Question, 0, len(questions)),
		index:     make(map[string]int, len(questions)),
		labels:    make(Labels, len(labels)),
	}
	for _, q := range questions {
		if q.ID == "" {
			return nil, ErrEmptyID
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateQuestion, q.ID)
		}
		if len(q.Options) != OptionCount {
			return nil, fmt.Errorf("%w: %q has %d", ErrOptionCount, q.ID, len(q.Options))
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, o := range q.Options {
			if o == "" {
				return nil, fmt.Errorf("%w: option of %q", ErrEmptyID, q.ID)
			}
			if _, dup := seen[o]; dup {
				return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateOption, o, q.ID)
			}
			seen[o] = struct{}{}
		}
		c.index[q.ID] = len(c.questions)
		c.questions = append(c.questions, Question{ID: q.ID, Options: append([]string(nil), q.Options...)})
	}
	for k, v := range labels {
		q, ok := c.Lookup(k.QuestionID)
		if !ok || !q.Has(k.OptionID) {
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownOption, k.QuestionID, k.OptionID)
		}
		c.labels[k] = v
	}
	return c, nil
}

// MustNew is New for package-level catalogs known to be valid.
func MustNew(questions []Question, labels Labels) *Catalog {
	c, err := New(questions, labels)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Len() int { return len(c.questions) }

// Questions returns a copy of the questions in display order.
func (c *Catalog) Questions() []Question {
	out := make([]Question, len(c.questions))
	for i, q := range c.questions {
		out[i] = Question{ID: q.ID, Options: append([]string(nil), q.Options...)}
	}
	return out
}

// At returns the i-th question.
func (c *Catalog) At(i int) (Question, bool) {
	if i < 0 || i >= len(c.questions) {
		return Question{}, false
	}
	q := c.questions[i]
	return Question{ID: q.ID, Options: append([]string(nil), q.Options...)}, true
}

func (c *Catalog) Lookup(id string) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.At(i)
}

// Label returns the display label of an option in lang, falling back to
// fallbackLang and finally to the option id itself.
func (c *Catalog) Label(questionID, optionID, lang string) string {
	if v, ok := c.labels[LabelKey{questionID, optionID, lang}]; ok {
		return v
	}
	if v, ok := c.labels[LabelKey{questionID, optionID, fallbackLang}]; ok {
		return v
	}
	return optionID
}

const fallbackLang = "nl"
