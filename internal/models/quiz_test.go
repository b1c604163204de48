package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestTakerViewStripsAnswerKeys(t *testing.T) {
	questions := []Question{
		{
			ID:             "q1",
			Type:           QuestionSingle,
			Prompt:         "Pick one",
			Options:        []string{"A", "B"},
			CorrectAnswers: []string{"B"},
			Explanation:    "because B",
		},
		{
			ID:             "q2",
			Type:           QuestionDragDrop,
			Prompt:         "Order",
			SlotCount:      2,
			CorrectAnswers: []string{"X", "Y"},
		},
	}
	questionsJSON, _ := json.Marshal(questions)
	quiz := &Quiz{ID: uuid.New(), Title: "t", QuestionsJSON: questionsJSON, QuestionCount: 2}

	view := quiz.TakerView()

	if len(view.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(view.Questions))
	}

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	for _, leaked := range []string{"correct_answers", "explanation", "because B"} {
		if strings.Contains(string(data), leaked) {
			t.Errorf("taker view leaks %q: %s", leaked, data)
		}
	}

	if view.Questions[1].SlotCount != 2 {
		t.Errorf("slot count must survive sanitization for dragdrop rendering")
	}
}

func TestQuestionsDecodesCorruptPayloadAsEmpty(t *testing.T) {
	quiz := &Quiz{QuestionsJSON: json.RawMessage(`{"broken":`)}

	if got := quiz.Questions(); len(got) != 0 {
		t.Errorf("expected empty question list for corrupt payload, got %d", len(got))
	}
}
