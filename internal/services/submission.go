package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"learnhub-backend/internal/grading"
	"learnhub-backend/internal/models"
)

// quizStore is the slice of QuizService the ledger needs.
type quizStore interface {
	GetForGrading(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
}

// submissionLedger is the persistence surface for attempt rows.
type submissionLedger interface {
	Upsert(ctx context.Context, s *models.Submission) error
	ListByQuizAndUser(ctx context.Context, quizID, userID uuid.UUID) ([]*models.Submission, error)
}

// SubmissionService runs one attempt end to end: load the quiz definition,
// grade every question in it, and record the result atomically in the
// ledger. Grading itself is pure computation; the only I/O is the quiz read
// and the ledger write.
type SubmissionService struct {
	quizzes quizStore
	ledger  submissionLedger
}

func NewSubmissionService(quizzes quizStore, ledger submissionLedger) *SubmissionService {
	return &SubmissionService{quizzes: quizzes, ledger: ledger}
}

// Submit grades an attempt and records it. Malformed or missing answers are
// graded as incorrect, never rejected; the only failure modes are a missing
// quiz and a persistence error, both safe for the caller to retry because
// grading is deterministic for fixed inputs.
func (s *SubmissionService) Submit(ctx context.Context, quizID, userID uuid.UUID, answers []models.SubmittedAnswer, durationSeconds int) (*models.SubmissionResult, error) {
	quiz, err := s.quizzes.GetForGrading(ctx, quizID)
	if err != nil {
		return nil, err
	}

	graded, summary := grading.GradeQuiz(quiz.Questions(), answers)

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	submission := &models.Submission{
		QuizID:          quizID,
		UserID:          userID,
		AnswersJSON:     answersJSON,
		Score:           summary.Score,
		DurationSeconds: durationSeconds,
	}
	if err := s.ledger.Upsert(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	return &models.SubmissionResult{
		QuizResult: &models.QuizResult{
			Answers:      graded,
			Score:        summary.Score,
			CorrectCount: summary.CorrectCount,
			Total:        summary.Total,
			HighestScore: submission.HighestScore,
			Message:      summary.Message(),
		},
		LatestSubmission: submission,
	}, nil
}

// History returns the ledger rows for a (quiz, user) pair, newest first. The
// ledger keeps a single evolving row per pair, so this is at most one entry.
func (s *SubmissionService) History(ctx context.Context, quizID, userID uuid.UUID) ([]*models.Submission, error) {
	if _, err := s.quizzes.GetForGrading(ctx, quizID); err != nil {
		return nil, err
	}
	submissions, err := s.ledger.ListByQuizAndUser(ctx, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission history: %w", err)
	}
	if submissions == nil {
		submissions = []*models.Submission{}
	}
	return submissions, nil
}
