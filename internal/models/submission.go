package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Submission is the ledger row for a (quiz, user) pair. There is at most one
// live row per pair: repeated attempts overwrite answers, score, duration and
// timestamp in place, while HighestScore only ever moves up.
type Submission struct {
	ID              uuid.UUID       `json:"id"`
	QuizID          uuid.UUID       `json:"quiz_id"`
	UserID          uuid.UUID       `json:"user_id"`
	AnswersJSON     json.RawMessage `json:"answers"`
	Score           int             `json:"score"`
	HighestScore    int             `json:"highest_score"`
	DurationSeconds int             `json:"duration_seconds"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SubmittedAnswer is one raw (questionId, answer) pair from the client. The
// answer value is kept as raw JSON because its shape depends on the question
// type: a string for single/image, an array of strings for multiple, and an
// array of nullable strings for dragdrop.
type SubmittedAnswer struct {
	QuestionID string          `json:"question_id"`
	Answer     json.RawMessage `json:"answer"`
}

type SubmitQuizRequest struct {
	Answers         []SubmittedAnswer `json:"answers"`
	DurationSeconds int               `json:"duration_seconds" validate:"gte=0"`
}

// GradedAnswer is the per-question breakdown returned to the client after
// grading. CorrectAnswer and SelectedOption carry the type-shaped values
// through unchanged for review display.
type GradedAnswer struct {
	QuestionID     string `json:"question_id"`
	Question       string `json:"question"`
	CorrectAnswer  any    `json:"correct_answer"`
	SelectedOption any    `json:"selected_option"`
	Correct        bool   `json:"correct"`
	Explanation    string `json:"explanation,omitempty"`
}

type QuizResult struct {
	Answers      []GradedAnswer `json:"answers"`
	Score        int            `json:"score"`
	CorrectCount int            `json:"correct_count"`
	Total        int            `json:"total"`
	HighestScore int            `json:"highest_score"`
	Message      string         `json:"message"`
}

type SubmissionResult struct {
	QuizResult       *QuizResult `json:"quiz_result"`
	LatestSubmission *Submission `json:"latest_submission"`
}
