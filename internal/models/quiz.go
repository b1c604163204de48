package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QuestionType discriminates how an answer is shaped and graded. The grader
// always resolves the type from the stored quiz definition, never from the
// client payload.
type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
	QuestionImage    QuestionType = "image"
	QuestionDragDrop QuestionType = "dragdrop"
)

type Quiz struct {
	ID               uuid.UUID       `json:"id"`
	CourseID         uuid.UUID       `json:"course_id"`
	LessonID         *uuid.UUID      `json:"lesson_id"`
	CreatedBy        uuid.UUID       `json:"created_by"`
	Title            string          `json:"title"`
	Description      *string         `json:"description"`
	TimeLimitSeconds int             `json:"time_limit_seconds"`
	QuestionsJSON    json.RawMessage `json:"questions"`
	QuestionCount    int             `json:"question_count"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Question is one entry of a quiz's question list. CorrectAnswers is an
// unordered set for single/multiple/image and an ordered, slot-indexed list
// for dragdrop. Options may be image URLs for the image type.
type Question struct {
	ID             string       `json:"id"`
	Type           QuestionType `json:"type"`
	Prompt         string       `json:"prompt"`
	Options        []string     `json:"options"`
	SlotCount      int          `json:"slot_count,omitempty"`
	CorrectAnswers []string     `json:"correct_answers"`
	Explanation    string       `json:"explanation,omitempty"`
}

// Questions decodes the stored question list. A corrupt payload yields an
// empty list rather than an error so a quiz always grades against its
// current (possibly empty) question set.
func (q *Quiz) Questions() []Question {
	var questions []Question
	if len(q.QuestionsJSON) > 0 {
		json.Unmarshal(q.QuestionsJSON, &questions)
	}
	return questions
}

type CreateQuizRequest struct {
	CourseID         uuid.UUID  `json:"course_id" validate:"required"`
	LessonID         *uuid.UUID `json:"lesson_id"`
	Title            string     `json:"title" validate:"required,max=200"`
	Description      *string    `json:"description"`
	TimeLimitSeconds int        `json:"time_limit_seconds" validate:"gte=0"`
	Questions        []Question `json:"questions" validate:"required"`
}

type UpdateQuizRequest struct {
	Title            string     `json:"title" validate:"required,max=200"`
	Description      *string    `json:"description"`
	TimeLimitSeconds int        `json:"time_limit_seconds" validate:"gte=0"`
	Questions        []Question `json:"questions" validate:"required"`
}

// TakerQuestion is the sanitized question view served to students: no
// correct answers, no explanations.
type TakerQuestion struct {
	ID        string       `json:"id"`
	Type      QuestionType `json:"type"`
	Prompt    string       `json:"prompt"`
	Options   []string     `json:"options"`
	SlotCount int          `json:"slot_count,omitempty"`
}

type TakerQuizView struct {
	ID               uuid.UUID       `json:"id"`
	CourseID         uuid.UUID       `json:"course_id"`
	LessonID         *uuid.UUID      `json:"lesson_id"`
	Title            string          `json:"title"`
	Description      *string         `json:"description"`
	TimeLimitSeconds int             `json:"time_limit_seconds"`
	Questions        []TakerQuestion `json:"questions"`
}

// TakerView strips answer keys from a quiz for delivery to a student.
func (q *Quiz) TakerView() *TakerQuizView {
	questions := q.Questions()
	sanitized := make([]TakerQuestion, 0, len(questions))
	for _, question := range questions {
		sanitized = append(sanitized, TakerQuestion{
			ID:        question.ID,
			Type:      question.Type,
			Prompt:    question.Prompt,
			Options:   question.Options,
			SlotCount: question.SlotCount,
		})
	}
	return &TakerQuizView{
		ID:               q.ID,
		CourseID:         q.CourseID,
		LessonID:         q.LessonID,
		Title:            q.Title,
		Description:      q.Description,
		TimeLimitSeconds: q.TimeLimitSeconds,
		Questions:        sanitized,
	}
}
