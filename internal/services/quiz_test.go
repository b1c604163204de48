package services

import (
	"testing"

	"learnhub-backend/internal/models"
)

func TestValidateQuestions(t *testing.T) {
	valid := []models.Question{
		{
			ID:             "q1",
			Type:           models.QuestionSingle,
			Prompt:         "Pick one",
			Options:        []string{"A", "B"},
			CorrectAnswers: []string{"B"},
		},
		{
			ID:             "q2",
			Type:           models.QuestionMultiple,
			Prompt:         "Pick many",
			Options:        []string{"A", "B", "C"},
			CorrectAnswers: []string{"A", "C"},
		},
		{
			ID:             "q3",
			Type:           models.QuestionDragDrop,
			Prompt:         "Order",
			SlotCount:      2,
			CorrectAnswers: []string{"X", "Y"},
		},
	}

	if fields := ValidateQuestions(valid); len(fields) != 0 {
		t.Fatalf("expected valid questions, got %v", fields)
	}
}

func TestValidateQuestionsRejectsInvalidKeys(t *testing.T) {
	tests := []struct {
		name     string
		question models.Question
	}{
		{
			"single with two correct answers",
			models.Question{ID: "q1", Type: models.QuestionSingle, Prompt: "p", Options: []string{"A", "B"}, CorrectAnswers: []string{"A", "B"}},
		},
		{
			"single answer outside options",
			models.Question{ID: "q1", Type: models.QuestionSingle, Prompt: "p", Options: []string{"A", "B"}, CorrectAnswers: []string{"Z"}},
		},
		{
			"multiple with empty correct set",
			models.Question{ID: "q1", Type: models.QuestionMultiple, Prompt: "p", Options: []string{"A"}, CorrectAnswers: nil},
		},
		{
			"multiple answer outside options",
			models.Question{ID: "q1", Type: models.QuestionMultiple, Prompt: "p", Options: []string{"A"}, CorrectAnswers: []string{"A", "Z"}},
		},
		{
			"dragdrop slot count mismatch",
			models.Question{ID: "q1", Type: models.QuestionDragDrop, Prompt: "p", SlotCount: 3, CorrectAnswers: []string{"X", "Y"}},
		},
		{
			"dragdrop without slots",
			models.Question{ID: "q1", Type: models.QuestionDragDrop, Prompt: "p", CorrectAnswers: []string{"X"}},
		},
		{
			"unknown type",
			models.Question{ID: "q1", Type: "essay", Prompt: "p", CorrectAnswers: []string{"X"}},
		},
		{
			"missing id",
			models.Question{Type: models.QuestionSingle, Prompt: "p", Options: []string{"A"}, CorrectAnswers: []string{"A"}},
		},
		{
			"missing prompt",
			models.Question{ID: "q1", Type: models.QuestionSingle, Options: []string{"A"}, CorrectAnswers: []string{"A"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields := ValidateQuestions([]models.Question{tc.question})
			if len(fields) == 0 {
				t.Errorf("expected validation failure for %s", tc.name)
			}
		})
	}
}

func TestAnswerKeyChanged(t *testing.T) {
	base := []models.Question{
		{ID: "q1", Type: models.QuestionSingle, Prompt: "Pick one", Options: []string{"A", "B"}, CorrectAnswers: []string{"B"}},
		{ID: "q2", Type: models.QuestionMultiple, Prompt: "Pick many", Options: []string{"A", "B", "C"}, CorrectAnswers: []string{"A", "C"}},
		{ID: "q3", Type: models.QuestionDragDrop, Prompt: "Order", SlotCount: 2, CorrectAnswers: []string{"X", "Y"}},
	}

	clone := func(mutate func(qs []models.Question) []models.Question) []models.Question {
		qs := make([]models.Question, len(base))
		copy(qs, base)
		return mutate(qs)
	}

	tests := []struct {
		name    string
		next    []models.Question
		changed bool
	}{
		{
			"identical definition",
			clone(func(qs []models.Question) []models.Question { return qs }),
			false,
		},
		{
			"title-level edits only",
			clone(func(qs []models.Question) []models.Question {
				qs[0].Prompt = "Pick exactly one"
				qs[0].Explanation = "new explanation"
				qs[1].Options = []string{"A", "B", "C", "D"}
				return qs
			}),
			false,
		},
		{
			"multiple correct set reordered",
			clone(func(qs []models.Question) []models.Question {
				qs[1].CorrectAnswers = []string{"C", "A"}
				return qs
			}),
			false,
		},
		{
			"single answer changed",
			clone(func(qs []models.Question) []models.Question {
				qs[0].CorrectAnswers = []string{"A"}
				return qs
			}),
			true,
		},
		{
			"question retyped",
			clone(func(qs []models.Question) []models.Question {
				qs[0].Type = models.QuestionImage
				return qs
			}),
			true,
		},
		{
			"dragdrop slots reordered",
			clone(func(qs []models.Question) []models.Question {
				qs[2].CorrectAnswers = []string{"Y", "X"}
				return qs
			}),
			true,
		},
		{
			"question removed",
			clone(func(qs []models.Question) []models.Question { return qs[:2] }),
			true,
		},
		{
			"question replaced under new id",
			clone(func(qs []models.Question) []models.Question {
				qs[0].ID = "q9"
				return qs
			}),
			true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := answerKeyChanged(base, tc.next); got != tc.changed {
				t.Errorf("answerKeyChanged = %v, want %v", got, tc.changed)
			}
		})
	}
}

func TestValidateQuestionsRejectsDuplicateIDs(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Type: models.QuestionSingle, Prompt: "p", Options: []string{"A"}, CorrectAnswers: []string{"A"}},
		{ID: "q1", Type: models.QuestionSingle, Prompt: "p", Options: []string{"A"}, CorrectAnswers: []string{"A"}},
	}

	fields := ValidateQuestions(questions)
	if _, ok := fields["questions[1]"]; !ok {
		t.Fatalf("expected duplicate id error on second question, got %v", fields)
	}
}
