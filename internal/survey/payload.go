package survey

import (
	"strconv"
	"time"

	"github.com/mind-engage/mascot-survey/internal/catalog"
	"github.com/mind-engage/mascot-survey/internal/validation"
)

// Form is the demographic section of the survey.
type Form = validation.Form

// Record is one flat result row as sent to the sheet API.
type Record map[string]string

// Field names of a Record besides the per-question codes.
const (
	FieldTimestamp = "timestamp"
	FieldAge       = validation.FieldAge
	FieldGender    = validation.FieldGender
	FieldEducation = validation.FieldEducation
	FieldUserAgent = "userAgent"
	FieldEmail     = validation.FieldPrizeEmail
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// BuildPayload flattens the answers and form into one result row. Every
// catalog question with a committed ranking gets its compact code.
func BuildPayload(cat *catalog.Catalog, answers AnswerSet, f Form, now time.Time, userAgent string) Record {
	rec := Record{
		FieldTimestamp: now.UTC().Format(timestampLayout),
		FieldAge:       strconv.Itoa(f.Age),
		FieldGender:    f.Gender,
		FieldEducation: f.Education,
		FieldUserAgent: userAgent,
	}
	if f.PrizeEmail != "" {
		rec[FieldEmail] = f.PrizeEmail
	}
	for _, q := range cat.Questions() {
		if r, ok := answers[q.ID]; ok {
			rec[q.ID] = Encode(q, r)
		}
	}
	return rec
}
