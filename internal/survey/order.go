package survey

import (
	"strconv"
	"strings"

	"github.com/mind-engage/mascot-survey/internal/catalog"
)

// Ranking is a permutation of a question's options, best first.
type Ranking []string

// AnswerSet holds the committed ranking per question id.
type AnswerSet map[string]Ranking

func (a AnswerSet) clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = append(Ranking(nil), v...)
	}
	return out
}

// InitialOrder is the ranking shown on entering a question: the prior answer
// when it holds exactly the question's options, else the catalog order. The
// result never aliases prior or the question.
func InitialOrder(q catalog.Question, prior Ranking) Ranking {
	if sameSet(q.Options, prior) {
		return append(Ranking(nil), prior...)
	}
	return append(Ranking(nil), q.Options...)
}

func sameSet(opts []string, r Ranking) bool {
	if len(opts) != len(r) {
		return false
	}
	want := make(map[string]int, len(opts))
	for _, o := range opts {
		want[o]++
	}
	for _, o := range r {
		if want[o] == 0 {
			return false
		}
		want[o]--
	}
	return true
}

// Move takes activeID out of order and reinserts it at the index overID held.
// Unknown ids or activeID == overID return an unchanged copy.
func Move(order Ranking, activeID, overID string) Ranking {
	out := append(Ranking(nil), order...)
	from, to := indexOf(out, activeID), indexOf(out, overID)
	if from < 0 || to < 0 || from == to {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append(Ranking{item}, out[to:]...)...)
	return out
}

func indexOf(r Ranking, id string) int {
	for i, v := range r {
		if v == id {
			return i
		}
	}
	return -1
}

// Encode renders r compactly: for each option of q in catalog order, its
// 1-based position in r. An option absent from r renders as 0.
func Encode(q catalog.Question, r Ranking) string {
	var b strings.Builder
	for _, opt := range q.Options {
		b.WriteString(strconv.Itoa(indexOf(r, opt) + 1))
	}
	return b.String()
}
