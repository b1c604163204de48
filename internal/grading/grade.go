package grading

import (
	"fmt"
	"strings"

	"learnhub-backend/internal/models"
)

// Grade compares a normalized answer against a question's correct-answer
// set. Grading is strictly binary: no partial credit for multiple-choice or
// per-slot dragdrop matches. An unknown question type grades as incorrect
// rather than failing.
func Grade(q models.Question, a Answer) bool {
	switch q.Type {
	case models.QuestionSingle, models.QuestionImage:
		if len(q.CorrectAnswers) == 0 {
			return false
		}
		return a.Single == q.CorrectAnswers[0]

	case models.QuestionMultiple:
		if len(q.CorrectAnswers) == 0 {
			return false
		}
		return equalSets(a.Multi, q.CorrectAnswers)

	case models.QuestionDragDrop:
		n := q.SlotCount
		if n == 0 {
			n = len(q.CorrectAnswers)
		}
		if n == 0 || len(q.CorrectAnswers) != n || len(a.Slots) != n {
			return false
		}
		// Only the submitted value is trimmed; the answer key is
		// authoritative and compared verbatim.
		for i, slot := range a.Slots {
			if slot == nil {
				return false
			}
			if strings.TrimSpace(*slot) != q.CorrectAnswers[i] {
				return false
			}
		}
		return true
	}

	return false
}

// equalSets reports whether two string slices are identical as sets:
// order-insensitive, duplicate-insensitive, same distinct membership.
func equalSets(submitted, correct []string) bool {
	want := make(map[string]struct{}, len(correct))
	for _, v := range correct {
		want[v] = struct{}{}
	}
	got := make(map[string]struct{}, len(submitted))
	for _, v := range submitted {
		if _, ok := want[v]; !ok {
			return false
		}
		got[v] = struct{}{}
	}
	return len(got) == len(want)
}

// Summary is the aggregate outcome of grading one quiz. Score is the raw
// count of correct questions; percentage is a presentation-layer derivation.
type Summary struct {
	Score        int
	CorrectCount int
	Total        int
}

// Message renders the human-readable score line, e.g. "You scored 7/10".
func (s Summary) Message() string {
	return fmt.Sprintf("You scored %d/%d", s.CorrectCount, s.Total)
}

// Percentage derives the score percentage, yielding 0 for an empty quiz
// rather than dividing by zero.
func (s Summary) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.Total) * 100
}

// GradeQuiz grades a full submission against a quiz's current question list.
// Iteration is driven by the quiz definition: questions the client skipped
// grade as incorrect, and answer entries for unknown question IDs are
// ignored. The returned breakdown has one entry per question, in quiz order.
func GradeQuiz(questions []models.Question, answers []models.SubmittedAnswer) ([]models.GradedAnswer, Summary) {
	byQuestion := make(map[string]models.SubmittedAnswer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	graded := make([]models.GradedAnswer, 0, len(questions))
	correctCount := 0
	for _, q := range questions {
		normalized := Normalize(q, byQuestion[q.ID].Answer)
		correct := Grade(q, normalized)
		if correct {
			correctCount++
		}
		graded = append(graded, models.GradedAnswer{
			QuestionID:     q.ID,
			Question:       q.Prompt,
			CorrectAnswer:  CorrectValue(q),
			SelectedOption: SelectedValue(q, normalized),
			Correct:        correct,
			Explanation:    q.Explanation,
		})
	}

	summary := Summary{
		Score:        correctCount,
		CorrectCount: correctCount,
		Total:        len(questions),
	}
	return graded, summary
}
