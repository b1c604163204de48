package grading

import (
	"encoding/json"

	"learnhub-backend/internal/models"
)

// Answer is the canonical comparable form of a submitted answer. Exactly one
// field is meaningful, selected by the question's type: Single for
// single/image, Multi for multiple, Slots for dragdrop (nil entry = empty
// slot). Question types are resolved from the quiz definition, so a client
// cannot steer grading onto a different comparison path by reshaping its
// payload.
type Answer struct {
	Single string
	Multi  []string
	Slots  []*string
}

// Normalize maps a raw submitted value onto the canonical form for the given
// question. It never fails: malformed or missing input degrades to the empty
// value for the type, because an unanswered question must still be gradable
// as incorrect.
func Normalize(q models.Question, raw json.RawMessage) Answer {
	switch q.Type {
	case models.QuestionSingle, models.QuestionImage:
		var s string
		if len(raw) > 0 {
			json.Unmarshal(raw, &s)
		}
		return Answer{Single: s}

	case models.QuestionMultiple:
		var selected []string
		if len(raw) > 0 {
			json.Unmarshal(raw, &selected)
		}
		return Answer{Multi: selected}

	case models.QuestionDragDrop:
		var slots []*string
		if len(raw) > 0 {
			json.Unmarshal(raw, &slots)
		}
		n := q.SlotCount
		if n == 0 {
			n = len(q.CorrectAnswers)
		}
		// Pad or truncate to the expected slot count so comparison is
		// always positional over n slots.
		if len(slots) > n {
			slots = slots[:n]
		}
		for len(slots) < n {
			slots = append(slots, nil)
		}
		return Answer{Slots: slots}
	}

	return Answer{}
}

// SelectedValue renders the normalized answer in the shape the client
// originally submitted it, for the per-question result breakdown.
func SelectedValue(q models.Question, a Answer) any {
	switch q.Type {
	case models.QuestionSingle, models.QuestionImage:
		return a.Single
	case models.QuestionMultiple:
		if a.Multi == nil {
			return []string{}
		}
		return a.Multi
	case models.QuestionDragDrop:
		return a.Slots
	}
	return nil
}

// CorrectValue is the authoritative answer in its type-shaped form: a single
// string for single/image, an array for multiple and dragdrop.
func CorrectValue(q models.Question) any {
	switch q.Type {
	case models.QuestionSingle, models.QuestionImage:
		if len(q.CorrectAnswers) > 0 {
			return q.CorrectAnswers[0]
		}
		return ""
	case models.QuestionMultiple, models.QuestionDragDrop:
		return q.CorrectAnswers
	}
	return nil
}
