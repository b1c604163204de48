package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub-backend/internal/models"
)

// SubmissionRepo is the ledger: one row per (quiz, user) pair, updated in
// place on re-attempts with a monotonically non-decreasing highest_score.
type SubmissionRepo struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepo(pool *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{pool: pool}
}

// Upsert records an attempt atomically. The GREATEST comparison runs inside
// the upsert, so two concurrent submissions from the same user cannot both
// read a stale watermark and regress it: whichever write lands second still
// keeps the higher of the two scores as highest_score. On return s carries
// the persisted highest_score and timestamps.
func (r *SubmissionRepo) Upsert(ctx context.Context, s *models.Submission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	answers := s.AnswersJSON
	if answers == nil {
		answers = json.RawMessage("[]")
	}

	query := `INSERT INTO submissions (id, quiz_id, user_id, answers_json, score, highest_score, duration_seconds, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $5, $6, NOW())
		ON CONFLICT (quiz_id, user_id) DO UPDATE SET
			answers_json = EXCLUDED.answers_json,
			score = EXCLUDED.score,
			highest_score = GREATEST(submissions.highest_score, EXCLUDED.score),
			duration_seconds = EXCLUDED.duration_seconds,
			submitted_at = EXCLUDED.submitted_at
		RETURNING id, highest_score, submitted_at, created_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.QuizID, s.UserID, answers, s.Score, s.DurationSeconds,
	).Scan(&s.ID, &s.HighestScore, &s.SubmittedAt, &s.CreatedAt)
}

// ListByQuizAndUser returns ledger rows for the pair, newest first. Under
// the single-row watermark design this is at most one row; the list shape is
// kept for the history endpoint contract.
func (r *SubmissionRepo) ListByQuizAndUser(ctx context.Context, quizID, userID uuid.UUID) ([]*models.Submission, error) {
	query := `SELECT id, quiz_id, user_id, answers_json, score, highest_score, duration_seconds, submitted_at, created_at
		FROM submissions WHERE quiz_id = $1 AND user_id = $2 ORDER BY submitted_at DESC`

	return r.list(ctx, query, quizID, userID)
}

// ListByQuiz returns every ledger row for a quiz, used by regrade jobs.
func (r *SubmissionRepo) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]*models.Submission, error) {
	query := `SELECT id, quiz_id, user_id, answers_json, score, highest_score, duration_seconds, submitted_at, created_at
		FROM submissions WHERE quiz_id = $1 ORDER BY submitted_at DESC`

	return r.list(ctx, query, quizID)
}

// UpdateScores rewrites a row's score and watermark after a regrade. A key
// change invalidates the old watermark, so both fields are set from the
// recomputed score rather than GREATEST-merged with the stale value.
func (r *SubmissionRepo) UpdateScores(ctx context.Context, id uuid.UUID, score, highestScore int) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE submissions SET score = $1, highest_score = $2 WHERE id = $3",
		score, highestScore, id,
	)
	return err
}

func (r *SubmissionRepo) list(ctx context.Context, query string, args ...interface{}) ([]*models.Submission, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var submissions []*models.Submission
	for rows.Next() {
		s := &models.Submission{}
		err := rows.Scan(
			&s.ID, &s.QuizID, &s.UserID, &s.AnswersJSON, &s.Score, &s.HighestScore,
			&s.DurationSeconds, &s.SubmittedAt, &s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}
