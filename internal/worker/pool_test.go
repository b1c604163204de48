package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"learnhub-backend/internal/models"
)

type stubJobStore struct{}

func (s *stubJobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

func (s *stubJobStore) UpdateError(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error {
	return nil
}

type stubQuizSource struct {
	quiz *models.Quiz
	err  error
}

func (s *stubQuizSource) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.quiz, nil
}

type scoreUpdate struct {
	id           uuid.UUID
	score        int
	highestScore int
}

type stubSubmissionStore struct {
	submissions []*models.Submission
	updates     []scoreUpdate
}

func (s *stubSubmissionStore) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]*models.Submission, error) {
	return s.submissions, nil
}

func (s *stubSubmissionStore) UpdateScores(ctx context.Context, id uuid.UUID, score, highestScore int) error {
	s.updates = append(s.updates, scoreUpdate{id: id, score: score, highestScore: highestScore})
	return nil
}

func regradeQuiz(t *testing.T, correct string) *models.Quiz {
	t.Helper()
	questions := []models.Question{
		{
			ID:             "q1",
			Type:           models.QuestionSingle,
			Prompt:         "Pick one",
			Options:        []string{"A", "B"},
			CorrectAnswers: []string{correct},
		},
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal questions: %v", err)
	}
	return &models.Quiz{ID: uuid.New(), QuestionsJSON: questionsJSON, QuestionCount: 1}
}

func storedSubmission(t *testing.T, answered string, score, highest int) *models.Submission {
	t.Helper()
	answers, err := json.Marshal([]models.SubmittedAnswer{
		{QuestionID: "q1", Answer: json.RawMessage(`"` + answered + `"`)},
	})
	if err != nil {
		t.Fatalf("marshal answers: %v", err)
	}
	return &models.Submission{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		AnswersJSON:  answers,
		Score:        score,
		HighestScore: highest,
	}
}

func TestProcessRegradeLowersScoreAndWatermark(t *testing.T) {
	// Key changed from "A" to "B": a stored answer of "A" that once scored
	// 1/1 now grades 0, and the stale watermark is reset with it.
	quiz := regradeQuiz(t, "B")
	subs := &stubSubmissionStore{
		submissions: []*models.Submission{storedSubmission(t, "A", 1, 1)},
	}
	pool := NewPool(nil, &stubJobStore{}, &stubQuizSource{quiz: quiz}, subs, 1)
	job := &models.Job{ID: uuid.New(), Type: models.JobTypeQuizRegrade, ReferenceID: quiz.ID}

	regraded, total, err := pool.processRegrade(context.Background(), job)
	if err != nil {
		t.Fatalf("processRegrade: %v", err)
	}
	if regraded != 1 || total != 1 {
		t.Fatalf("regraded %d rows over %d questions, want 1/1", regraded, total)
	}
	if len(subs.updates) != 1 {
		t.Fatalf("expected one score update, got %d", len(subs.updates))
	}
	if subs.updates[0].score != 0 || subs.updates[0].highestScore != 0 {
		t.Errorf("update = score %d / highest %d, want 0 / 0", subs.updates[0].score, subs.updates[0].highestScore)
	}
}

func TestProcessRegradeRaisesScore(t *testing.T) {
	// Key changed from "B" to "A": a stored answer of "A" that scored 0
	// becomes correct under the new key.
	quiz := regradeQuiz(t, "A")
	subs := &stubSubmissionStore{
		submissions: []*models.Submission{storedSubmission(t, "A", 0, 0)},
	}
	pool := NewPool(nil, &stubJobStore{}, &stubQuizSource{quiz: quiz}, subs, 1)
	job := &models.Job{ID: uuid.New(), Type: models.JobTypeQuizRegrade, ReferenceID: quiz.ID}

	if _, _, err := pool.processRegrade(context.Background(), job); err != nil {
		t.Fatalf("processRegrade: %v", err)
	}
	if len(subs.updates) != 1 {
		t.Fatalf("expected one score update, got %d", len(subs.updates))
	}
	if subs.updates[0].score != 1 || subs.updates[0].highestScore != 1 {
		t.Errorf("update = score %d / highest %d, want 1 / 1", subs.updates[0].score, subs.updates[0].highestScore)
	}
}

func TestProcessRegradeCorruptAnswersGradeIncorrect(t *testing.T) {
	quiz := regradeQuiz(t, "A")
	corrupt := &models.Submission{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		AnswersJSON: json.RawMessage(`{"broken":`),
		Score:       1,
	}
	subs := &stubSubmissionStore{submissions: []*models.Submission{corrupt}}
	pool := NewPool(nil, &stubJobStore{}, &stubQuizSource{quiz: quiz}, subs, 1)
	job := &models.Job{ID: uuid.New(), Type: models.JobTypeQuizRegrade, ReferenceID: quiz.ID}

	regraded, _, err := pool.processRegrade(context.Background(), job)
	if err != nil {
		t.Fatalf("corrupt stored answers must not abort the regrade: %v", err)
	}
	if regraded != 1 {
		t.Fatalf("regraded = %d, want 1", regraded)
	}
	if subs.updates[0].score != 0 || subs.updates[0].highestScore != 0 {
		t.Errorf("corrupt answers graded %d/%d, want fully incorrect", subs.updates[0].score, subs.updates[0].highestScore)
	}
}

func TestProcessRegradeQuizLoadFailure(t *testing.T) {
	pool := NewPool(nil, &stubJobStore{}, &stubQuizSource{err: errors.New("connection reset")}, &stubSubmissionStore{}, 1)
	job := &models.Job{ID: uuid.New(), Type: models.JobTypeQuizRegrade, ReferenceID: uuid.New()}

	if _, _, err := pool.processRegrade(context.Background(), job); err == nil {
		t.Fatal("expected quiz load failure to surface")
	}
}
