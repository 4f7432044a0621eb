// Package survey drives one respondent through the mascot survey:
// verification, consent, the ranking questions, the demographic form and the
// final submission.
package survey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/mind-engage/mascot-survey/internal/catalog"
	"github.com/mind-engage/mascot-survey/internal/validation"
)

var (
	ErrIllegalTransition  = errors.New("survey: transition not allowed from current step")
	ErrConsentRequired    = errors.New("survey: consent required")
	ErrInvalidForm        = errors.New("survey: demographic form has errors")
	ErrIncompleteRankings = errors.New("survey: rankings incomplete")
	ErrBusy               = errors.New("survey: submission already in progress")
	ErrSubmitFailed       = errors.New("survey: submission failed")
	ErrUnknownField       = errors.New("survey: unknown form field")
)

// Checker is the duplicate-submission guard.
type Checker interface {
	HasSubmitted(ctx context.Context) (bool, error)
	MarkSubmitted(ctx context.Context, userAgent string) error
}

// Submitter sends one result row to remote storage.
type Submitter interface {
	Submit(ctx context.Context, rec Record) error
}

type notice int

const (
	noticeNone notice = iota
	noticeRankings
	noticeSubmitFailed
)

// Machine is the state of one survey run. It is safe for concurrent use.
type Machine struct {
	cat       *catalog.Catalog
	guard     Checker
	sink      Submitter
	now       func() time.Time
	userAgent string
	bounds    validation.Bounds
	msgs      validation.Messages
	log       *slog.Logger

	mu         sync.Mutex
	step       Step
	checked    bool
	consent    bool
	order      Ranking
	answers    AnswerSet
	form       Form
	errs       validation.Errors
	notice     notice
	submitting bool
}

type Option func(*Machine)

func WithClock(now func() time.Time) Option { return func(m *Machine) { m.now = now } }

func WithUserAgent(ua string) Option { return func(m *Machine) { m.userAgent = ua } }

func WithBounds(b validation.Bounds) Option { return func(m *Machine) { m.bounds = b } }

func WithMessages(msgs validation.Messages) Option { return func(m *Machine) { m.msgs = msgs } }

func WithLogger(l *slog.Logger) Option { return func(m *Machine) { m.log = l } }

func New(cat *catalog.Catalog, g Checker, s Submitter, opts ...Option) *Machine {
	m := &Machine{
		cat:     cat,
		guard:   g,
		sink:    s,
		now:     time.Now,
		bounds:  validation.DefaultBounds,
		msgs:    validation.Dutch,
		log:     slog.Default(),
		step:    Step{Kind: Verification},
		answers: AnswerSet{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Init runs the startup duplicate check. A device that already submitted moves
// to AlreadySubmitted. A failed check leaves the machine in Verification and
// may be retried.
func (m *Machine) Init(ctx context.Context) error {
	m.mu.Lock()
	if m.checked || m.step.Kind != Verification {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	done, err := m.guard.HasSubmitted(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.log.Warn("submission check failed", "err", err)
		return fmt.Errorf("survey: submission check: %w", err)
	}
	if m.checked {
		return nil
	}
	m.checked = true
	if done && m.step.Kind == Verification {
		m.log.Info("device already submitted")
		m.step = Step{Kind: AlreadySubmitted}
	}
	return nil
}

// Verify applies the verifier outcome. A false outcome keeps the machine in
// Verification. Progress past Verification waits for a successful submission
// check, which is retried here when Init did not complete.
func (m *Machine) Verify(ctx context.Context, ok bool) error {
	if !ok {
		return nil
	}
	if err := m.Init(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.step.Kind {
	case AlreadySubmitted:
		return nil
	case Verification:
		m.step = Step{Kind: Consent}
		return nil
	default:
		return m.illegal("verify")
	}
}

func (m *Machine) SetConsent(accepted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step.Kind != Consent {
		return m.illegal("consent")
	}
	m.consent = accepted
	return nil
}

// Start leaves Consent for the first question, or for the form when the
// catalog is empty.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step.Kind != Consent {
		return m.illegal("start")
	}
	if !m.consent {
		return ErrConsentRequired
	}
	if m.cat.Len() == 0 {
		m.step = Step{Kind: DemographicForm}
		return nil
	}
	m.enter(0)
	return nil
}

// Reorder moves activeID to the slot overID occupies in the ranking being
// edited. It does nothing outside a question step.
func (m *Machine) Reorder(activeID, overID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step.Kind != Question {
		return
	}
	m.order = Move(m.order, activeID, overID)
}

// Next commits the ranking being edited and advances.
func (m *Machine) Next() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step.Kind != Question {
		return m.illegal("next")
	}
	q, _ := m.cat.At(m.step.Index)
	m.answers[q.ID] = append(Ranking(nil), m.order...)
	if m.step.Index+1 < m.cat.Len() {
		m.enter(m.step.Index + 1)
		return nil
	}
	m.step = Step{Kind: DemographicForm}
	m.order = nil
	return nil
}

// Back returns to the previous question. Uncommitted edits are dropped.
func (m *Machine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step.Kind != Question || m.step.Index == 0 {
		return m.illegal("back")
	}
	m.enter(m.step.Index - 1)
	return nil
}

func (m *Machine) enter(i int) {
	q, _ := m.cat.At(i)
	m.step = QuestionStep(i)
	m.order = InitialOrder(q, m.answers[q.ID])
}

// UpdateField sets one demographic field from its text input. An age that is
// not a number is kept as empty.
func (m *Machine) UpdateField(name, value string) error {
	return m.UpdateFields(map[string]string{name: value})
}

// UpdateFields sets several demographic fields at once. Either all names are
// known and every field is applied, or nothing changes.
func (m *Machine) UpdateFields(fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step.Kind != DemographicForm {
		return m.illegal("update form")
	}
	for name := range fields {
		if !formField(name) {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	for name, value := range fields {
		switch name {
		case validation.FieldAge:
			age, err := validation.AgeFromString(value)
			if err != nil {
				age = 0
			}
			m.form.Age = age
		case validation.FieldGender:
			m.form.Gender = value
		case validation.FieldEducation:
			m.form.Education = value
		case validation.FieldPrizeEmail:
			m.form.PrizeEmail = value
		}
		delete(m.errs, name)
	}
	return nil
}

func formField(name string) bool {
	switch name {
	case validation.FieldAge, validation.FieldGender, validation.FieldEducation, validation.FieldPrizeEmail:
		return true
	}
	return false
}

func (m *Machine) SetForm(f Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step.Kind != DemographicForm {
		return m.illegal("update form")
	}
	m.form = f
	m.errs = nil
	return nil
}

// SetMessages switches the language of validation output. Errors already
// shown are re-rendered.
func (m *Machine) SetMessages(msgs validation.Messages) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = msgs
	if len(m.errs) == 0 {
		return
	}
	fresh := validation.Demographics(m.form, m.bounds, m.msgs)
	for k := range m.errs {
		if v, ok := fresh[k]; ok {
			m.errs[k] = v
		} else {
			delete(m.errs, k)
		}
	}
}

// Submit validates and sends the survey. Validation failures never reach the
// network. On a send failure the step, answers and form are left as they were
// and the device is not marked, so the user may try again.
func (m *Machine) Submit(ctx context.Context) (validation.Errors, error) {
	m.mu.Lock()
	if m.step.Kind != DemographicForm {
		m.mu.Unlock()
		return nil, m.illegal("submit")
	}
	if m.submitting {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	m.notice = noticeNone
	m.errs = validation.Demographics(m.form, m.bounds, m.msgs)
	if !m.errs.Valid() {
		errs := copyErrors(m.errs)
		m.mu.Unlock()
		return errs, ErrInvalidForm
	}
	if !validation.Rankings(m.answers, m.cat.Questions()) {
		m.notice = noticeRankings
		m.mu.Unlock()
		return nil, ErrIncompleteRankings
	}
	rec := BuildPayload(m.cat, m.answers, m.form, m.now(), m.userAgent)
	m.submitting = true
	m.mu.Unlock()

	err := m.sink.Submit(ctx, rec)
	if err == nil {
		// the row exists remotely now; marking must not be cut short
		if merr := m.guard.MarkSubmitted(context.WithoutCancel(ctx), rec[FieldUserAgent]); merr != nil {
			m.log.Error("recording submission failed", "err", merr)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	if err != nil {
		m.notice = noticeSubmitFailed
		m.log.Warn("submission failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	m.step = Step{Kind: Submitted}
	m.order = nil
	m.log.Info("survey submitted", "questions", len(m.answers))
	return nil, nil
}

func (m *Machine) illegal(op string) error {
	return fmt.Errorf("%w: %s in %s", ErrIllegalTransition, op, m.step)
}

// State is a copy of the machine for rendering.
type State struct {
	Step       Step              `json:"step"`
	QuestionID string            `json:"questionId,omitempty"`
	Progress   string            `json:"progress,omitempty"`
	CanBack    bool              `json:"canBack"`
	IsLast     bool              `json:"isLast"`
	Consent    bool              `json:"consent"`
	Order      Ranking           `json:"order,omitempty"`
	Answers    AnswerSet         `json:"answers"`
	Form       Form              `json:"form"`
	Errors     validation.Errors `json:"errors,omitempty"`
	Notice     string            `json:"notice,omitempty"`
	Submitting bool              `json:"submitting"`
}

func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := State{
		Step:       m.step,
		Consent:    m.consent,
		Order:      append(Ranking(nil), m.order...),
		Answers:    m.answers.clone(),
		Form:       m.form,
		Errors:     copyErrors(m.errs),
		Submitting: m.submitting,
	}
	if m.step.Kind == Question {
		q, _ := m.cat.At(m.step.Index)
		s.QuestionID = q.ID
		s.Progress = strconv.Itoa(m.step.Index+1) + "/" + strconv.Itoa(m.cat.Len())
		s.CanBack = m.step.Index > 0
		s.IsLast = m.step.Index == m.cat.Len()-1
	}
	switch m.notice {
	case noticeRankings:
		s.Notice = m.msgs.RankingsIncomplete
	case noticeSubmitFailed:
		s.Notice = m.msgs.SubmitFailed
	}
	return s
}

func copyErrors(e validation.Errors) validation.Errors {
	if len(e) == 0 {
		return nil
	}
	out := make(validation.Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
