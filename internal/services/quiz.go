package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"learnhub-backend/internal/models"
	"learnhub-backend/internal/repository"
)

const quizCacheTTL = 5 * time.Minute

// QuizService owns the quiz definition store: instructor CRUD with
// per-type answer-key validation, a read-through redis cache for the
// grading path, and regrade job dispatch when an answer key changes.
type QuizService struct {
	quizRepo   *repository.QuizRepo
	courseRepo *repository.CourseRepo
	jobRepo    *repository.JobRepo
	redis      *redis.Client
}

func NewQuizService(quizRepo *repository.QuizRepo, courseRepo *repository.CourseRepo, jobRepo *repository.JobRepo, redisClient *redis.Client) *QuizService {
	return &QuizService{
		quizRepo:   quizRepo,
		courseRepo: courseRepo,
		jobRepo:    jobRepo,
		redis:      redisClient,
	}
}

// CanAccess reports whether a user may take or review this quiz: enrolled in
// the owning course, the quiz owner, or an admin.
func (s *QuizService) CanAccess(ctx context.Context, quiz *models.Quiz, userID uuid.UUID, role string) (bool, error) {
	if role == models.RoleAdmin || quiz.CreatedBy == userID {
		return true, nil
	}
	return s.courseRepo.IsEnrolled(ctx, quiz.CourseID, userID)
}

func quizCacheKey(id uuid.UUID) string {
	return "quiz_def:" + id.String()
}

// GetForGrading loads a quiz definition, preferring the redis cache. Cache
// failures fall through to Postgres; the cache is never authoritative.
func (s *QuizService) GetForGrading(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	if cached, err := s.redis.Get(ctx, quizCacheKey(id)).Bytes(); err == nil {
		quiz := &models.Quiz{}
		if jsonErr := json.Unmarshal(cached, quiz); jsonErr == nil {
			return quiz, nil
		}
	}

	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Quiz not found"}
		}
		return nil, fmt.Errorf("failed to load quiz %s: %w", id, err)
	}

	if data, err := json.Marshal(quiz); err == nil {
		s.redis.Set(ctx, quizCacheKey(id), data, quizCacheTTL)
	}
	return quiz, nil
}

func (s *QuizService) Create(ctx context.Context, userID uuid.UUID, req models.CreateQuizRequest) (*models.Quiz, error) {
	if fields := ValidateQuestions(req.Questions); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	questionsJSON, err := json.Marshal(req.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}

	quiz := &models.Quiz{
		CourseID:         req.CourseID,
		LessonID:         req.LessonID,
		CreatedBy:        userID,
		Title:            req.Title,
		Description:      req.Description,
		TimeLimitSeconds: req.TimeLimitSeconds,
		QuestionsJSON:    questionsJSON,
		QuestionCount:    len(req.Questions),
	}

	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// Update replaces a quiz's definition and invalidates the grading cache.
// When the edit changed how the quiz grades, a quiz-regrade job is enqueued
// so existing ledger rows are re-scored against the new answer key; cosmetic
// edits (title, description, prompts) return a nil job and leave the ledger
// alone.
func (s *QuizService) Update(ctx context.Context, quiz *models.Quiz, userID uuid.UUID, req models.UpdateQuizRequest) (*models.Job, error) {
	if fields := ValidateQuestions(req.Questions); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	questionsJSON, err := json.Marshal(req.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}

	needsRegrade := answerKeyChanged(quiz.Questions(), req.Questions)

	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.TimeLimitSeconds = req.TimeLimitSeconds
	quiz.QuestionsJSON = questionsJSON
	quiz.QuestionCount = len(req.Questions)

	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, err
	}
	s.redis.Del(ctx, quizCacheKey(quiz.ID))

	if !needsRegrade {
		return nil, nil
	}

	job := &models.Job{
		UserID:      userID,
		Type:        models.JobTypeQuizRegrade,
		ReferenceID: quiz.ID,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create regrade job: %w", err)
	}

	jobBytes, _ := json.Marshal(job)
	s.redis.LPush(ctx, "queue:"+models.JobTypeQuizRegrade, string(jobBytes))

	return job, nil
}

func (s *QuizService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.quizRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.redis.Del(ctx, quizCacheKey(id))
	return nil
}

// ValidateQuestions enforces the per-type answer-key invariants: exactly one
// correct answer for single/image, a non-empty option subset for multiple,
// and a correct-answer list matching the slot count for dragdrop. Question
// IDs must be unique within the quiz.
func ValidateQuestions(questions []models.Question) map[string]string {
	fields := make(map[string]string)
	seen := make(map[string]bool, len(questions))

	for i, q := range questions {
		key := fmt.Sprintf("questions[%d]", i)

		if q.ID == "" {
			fields[key] = "question id is required"
			continue
		}
		if seen[q.ID] {
			fields[key] = fmt.Sprintf("duplicate question id %q", q.ID)
			continue
		}
		seen[q.ID] = true

		if q.Prompt == "" {
			fields[key] = "prompt is required"
			continue
		}

		switch q.Type {
		case models.QuestionSingle, models.QuestionImage:
			if len(q.CorrectAnswers) != 1 {
				fields[key] = "single and image questions require exactly one correct answer"
			} else if !contains(q.Options, q.CorrectAnswers[0]) {
				fields[key] = "correct answer must be one of the options"
			}
		case models.QuestionMultiple:
			if len(q.CorrectAnswers) == 0 {
				fields[key] = "multiple-choice questions require at least one correct answer"
				continue
			}
			for _, answer := range q.CorrectAnswers {
				if !contains(q.Options, answer) {
					fields[key] = "correct answers must be a subset of the options"
					break
				}
			}
		case models.QuestionDragDrop:
			if q.SlotCount <= 0 {
				fields[key] = "dragdrop questions require a positive slot count"
			} else if len(q.CorrectAnswers) != q.SlotCount {
				fields[key] = "dragdrop correct-answer list must match the slot count"
			}
		default:
			fields[key] = fmt.Sprintf("unsupported question type %q", q.Type)
		}
	}

	return fields
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

// answerKeyChanged reports whether two question lists grade differently: a
// question added, removed, retyped, or given a different correct-answer set.
// Prompt, option, and explanation edits never trigger a regrade.
func answerKeyChanged(prev, next []models.Question) bool {
	if len(prev) != len(next) {
		return true
	}
	keys := make(map[string]string, len(prev))
	for _, q := range prev {
		keys[q.ID] = gradingKey(q)
	}
	for _, q := range next {
		key, ok := keys[q.ID]
		if !ok || key != gradingKey(q) {
			return true
		}
	}
	return false
}

// gradingKey canonicalizes the grading-relevant part of a question. The
// correct-answer set is order-insensitive for multiple choice and positional
// for dragdrop.
func gradingKey(q models.Question) string {
	answers := q.CorrectAnswers
	if q.Type == models.QuestionMultiple {
		answers = append([]string(nil), answers...)
		sort.Strings(answers)
	}
	return fmt.Sprintf("%s|%d|%q", q.Type, q.SlotCount, answers)
}
