package survey

import (
	"fmt"
	"strconv"
)

// StepKind is the screen the survey is on.
type StepKind int

const (
	Verification StepKind = iota
	Consent
	Question
	DemographicForm
	Submitted
	AlreadySubmitted
)

var stepNames = [...]string{
	Verification:     "verification",
	Consent:          "consent",
	Question:         "question",
	DemographicForm:  "form",
	Submitted:        "submitted",
	AlreadySubmitted: "already_submitted",
}

func (k StepKind) String() string {
	if k < 0 || int(k) >= len(stepNames) {
		return "StepKind(" + strconv.Itoa(int(k)) + ")"
	}
	return stepNames[k]
}

func (k StepKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(stepNames) {
		return nil, fmt.Errorf("survey: unknown step kind %d", int(k))
	}
	return []byte(stepNames[k]), nil
}

func (k *StepKind) UnmarshalText(b []byte) error {
	for i, n := range stepNames {
		if n == string(b) {
			*k = StepKind(i)
			return nil
		}
	}
	return fmt.Errorf("survey: unknown step kind %q", b)
}

// Step is the navigation state. Index is meaningful only for Question.
type Step struct {
	Kind  StepKind `json:"kind"`
	Index int      `json:"index"`
}

func QuestionStep(i int) Step { return Step{Kind: Question, Index: i} }

func (s Step) String() string {
	if s.Kind == Question {
		return fmt.Sprintf("question(%d)", s.Index)
	}
	return s.Kind.String()
}
