package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"learnhub-backend/internal/models"
)

type stubQuizStore struct {
	quiz *models.Quiz
	err  error
}

func (s *stubQuizStore) GetForGrading(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.quiz, nil
}

// stubLedger mirrors the Postgres upsert semantics: one row per (quiz, user),
// highest_score merged with GREATEST on every write.
type stubLedger struct {
	rows      map[string]*models.Submission
	upsertErr error
}

func newStubLedger() *stubLedger {
	return &stubLedger{rows: make(map[string]*models.Submission)}
}

func ledgerKey(quizID, userID uuid.UUID) string {
	return quizID.String() + "/" + userID.String()
}

func (l *stubLedger) Upsert(ctx context.Context, s *models.Submission) error {
	if l.upsertErr != nil {
		return l.upsertErr
	}
	key := ledgerKey(s.QuizID, s.UserID)
	if existing, ok := l.rows[key]; ok {
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		s.HighestScore = existing.HighestScore
		if s.Score > s.HighestScore {
			s.HighestScore = s.Score
		}
	} else {
		s.ID = uuid.New()
		s.CreatedAt = time.Now()
		s.HighestScore = s.Score
	}
	s.SubmittedAt = time.Now()
	row := *s
	l.rows[key] = &row
	return nil
}

func (l *stubLedger) ListByQuizAndUser(ctx context.Context, quizID, userID uuid.UUID) ([]*models.Submission, error) {
	if row, ok := l.rows[ledgerKey(quizID, userID)]; ok {
		return []*models.Submission{row}, nil
	}
	return nil, nil
}

func twoQuestionQuiz(t *testing.T) *models.Quiz {
	t.Helper()
	questions := []models.Question{
		{
			ID:             "q1",
			Type:           models.QuestionSingle,
			Prompt:         "Pick one",
			Options:        []string{"A", "B", "C", "D"},
			CorrectAnswers: []string{"B"},
		},
		{
			ID:             "q2",
			Type:           models.QuestionMultiple,
			Prompt:         "Pick all that apply",
			Options:        []string{"A", "B", "C", "D"},
			CorrectAnswers: []string{"A", "D"},
		},
	}
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal questions: %v", err)
	}
	return &models.Quiz{
		ID:            uuid.New(),
		CourseID:      uuid.New(),
		Title:         "Unit 1 quiz",
		QuestionsJSON: questionsJSON,
		QuestionCount: len(questions),
	}
}

func answer(t *testing.T, questionID string, value interface{}) models.SubmittedAnswer {
	t.Helper()
	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal answer: %v", err)
	}
	return models.SubmittedAnswer{QuestionID: questionID, Answer: raw}
}

func TestSubmitFirstAttempt(t *testing.T) {
	quiz := twoQuestionQuiz(t)
	ledger := newStubLedger()
	svc := NewSubmissionService(&stubQuizStore{quiz: quiz}, ledger)
	userID := uuid.New()

	result, err := svc.Submit(context.Background(), quiz.ID, userID, []models.SubmittedAnswer{
		answer(t, "q1", "B"),
		answer(t, "q2", []string{"A", "D"}),
	}, 120)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	qr := result.QuizResult
	if qr.CorrectCount != 2 || qr.Total != 2 || qr.Score != 2 {
		t.Fatalf("unexpected summary: %+v", qr)
	}
	if qr.Message != "You scored 2/2" {
		t.Errorf("Message = %q", qr.Message)
	}
	if qr.HighestScore != 2 {
		t.Errorf("HighestScore = %d, want 2", qr.HighestScore)
	}
	if len(qr.Answers) != 2 {
		t.Fatalf("expected per-question breakdown, got %d entries", len(qr.Answers))
	}
	if result.LatestSubmission.DurationSeconds != 120 {
		t.Errorf("DurationSeconds = %d", result.LatestSubmission.DurationSeconds)
	}
}

func TestSubmitRetainsHighestScoreAcrossAttempts(t *testing.T) {
	quiz := twoQuestionQuiz(t)
	ledger := newStubLedger()
	svc := NewSubmissionService(&stubQuizStore{quiz: quiz}, ledger)
	userID := uuid.New()

	first, err := svc.Submit(context.Background(), quiz.ID, userID, []models.SubmittedAnswer{
		answer(t, "q1", "B"),
		answer(t, "q2", []string{"A", "D"}),
	}, 100)
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if first.QuizResult.HighestScore != 2 {
		t.Fatalf("first HighestScore = %d, want 2", first.QuizResult.HighestScore)
	}

	// Worse re-attempt overwrites the latest score but not the watermark.
	second, err := svc.Submit(context.Background(), quiz.ID, userID, []models.SubmittedAnswer{
		answer(t, "q1", "A"),
		answer(t, "q2", []string{"A"}),
	}, 60)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	if second.QuizResult.CorrectCount != 0 {
		t.Errorf("second CorrectCount = %d, want 0", second.QuizResult.CorrectCount)
	}
	if second.QuizResult.HighestScore != 2 {
		t.Errorf("HighestScore downgraded to %d, want 2", second.QuizResult.HighestScore)
	}
	if second.LatestSubmission.Score != 0 {
		t.Errorf("LatestSubmission.Score = %d, want 0", second.LatestSubmission.Score)
	}
	if second.LatestSubmission.ID != first.LatestSubmission.ID {
		t.Errorf("re-attempt created a new ledger row instead of updating in place")
	}

	history, err := svc.History(context.Background(), quiz.ID, userID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one ledger row per (quiz,user), got %d", len(history))
	}
	if history[0].HighestScore != 2 || history[0].Score != 0 {
		t.Errorf("ledger row = score %d / highest %d, want 0 / 2", history[0].Score, history[0].HighestScore)
	}
}

func TestSubmitIdenticalAnswersIsDeterministic(t *testing.T) {
	quiz := twoQuestionQuiz(t)
	answers := []models.SubmittedAnswer{
		answer(t, "q1", "B"),
		answer(t, "q2", []string{"D", "A"}),
	}

	for i := 0; i < 2; i++ {
		svc := NewSubmissionService(&stubQuizStore{quiz: quiz}, newStubLedger())
		result, err := svc.Submit(context.Background(), quiz.ID, uuid.New(), answers, 30)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if result.QuizResult.Score != 2 {
			t.Fatalf("run %d: Score = %d, want 2", i, result.QuizResult.Score)
		}
	}
}

func TestSubmitMissingAnswersGradeAsIncorrect(t *testing.T) {
	quiz := twoQuestionQuiz(t)
	svc := NewSubmissionService(&stubQuizStore{quiz: quiz}, newStubLedger())

	result, err := svc.Submit(context.Background(), quiz.ID, uuid.New(), []models.SubmittedAnswer{
		answer(t, "q1", "B"),
	}, 15)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.QuizResult.Total != 2 {
		t.Errorf("Total = %d, want full question count 2", result.QuizResult.Total)
	}
	if result.QuizResult.CorrectCount != 1 {
		t.Errorf("CorrectCount = %d, want 1", result.QuizResult.CorrectCount)
	}
	if result.QuizResult.Answers[1].Correct {
		t.Errorf("missing answer graded correct")
	}
}

func TestSubmitQuizNotFound(t *testing.T) {
	svc := NewSubmissionService(&stubQuizStore{err: &NotFoundError{Message: "Quiz not found"}}, newStubLedger())

	_, err := svc.Submit(context.Background(), uuid.New(), uuid.New(), nil, 0)

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestSubmitPersistenceFailureSurfaces(t *testing.T) {
	quiz := twoQuestionQuiz(t)
	ledger := newStubLedger()
	ledger.upsertErr = errors.New("connection reset")
	svc := NewSubmissionService(&stubQuizStore{quiz: quiz}, ledger)

	_, err := svc.Submit(context.Background(), quiz.ID, uuid.New(), nil, 0)
	if err == nil {
		t.Fatal("expected persistence error to propagate")
	}
	if len(ledger.rows) != 0 {
		t.Errorf("failed write must not leave a partial row")
	}
}

func TestSubmitZeroQuestionQuiz(t *testing.T) {
	quiz := &models.Quiz{ID: uuid.New(), QuestionsJSON: json.RawMessage("[]")}
	svc := NewSubmissionService(&stubQuizStore{quiz: quiz}, newStubLedger())

	result, err := svc.Submit(context.Background(), quiz.ID, uuid.New(), nil, 0)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.QuizResult.Score != 0 || result.QuizResult.Total != 0 {
		t.Errorf("unexpected summary for empty quiz: %+v", result.QuizResult)
	}
}
