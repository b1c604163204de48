package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub-backend/internal/models"
)

type QuizRepo struct {
	pool *pgxpool.Pool
}

func NewQuizRepo(pool *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{pool: pool}
}

func (r *QuizRepo) Create(ctx context.Context, q *models.Quiz) error {
	q.ID = uuid.New()
	questions := q.QuestionsJSON
	if questions == nil {
		questions = json.RawMessage("[]")
	}

	query := `INSERT INTO quizzes (id, course_id, lesson_id, created_by, title, description, time_limit_seconds, questions_json, question_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		q.ID, q.CourseID, q.LessonID, q.CreatedBy, q.Title, q.Description,
		q.TimeLimitSeconds, questions, q.QuestionCount,
	).Scan(&q.CreatedAt, &q.UpdatedAt)
}

func (r *QuizRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	q := &models.Quiz{}
	query := `SELECT id, course_id, lesson_id, created_by, title, description, time_limit_seconds, questions_json, question_count, created_at, updated_at
		FROM quizzes WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.CourseID, &q.LessonID, &q.CreatedBy, &q.Title, &q.Description,
		&q.TimeLimitSeconds, &q.QuestionsJSON, &q.QuestionCount, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *QuizRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Quiz, error) {
	query := `SELECT id, course_id, lesson_id, created_by, title, description, time_limit_seconds, questions_json, question_count, created_at, updated_at
		FROM quizzes WHERE course_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []*models.Quiz
	for rows.Next() {
		q := &models.Quiz{}
		err := rows.Scan(
			&q.ID, &q.CourseID, &q.LessonID, &q.CreatedBy, &q.Title, &q.Description,
			&q.TimeLimitSeconds, &q.QuestionsJSON, &q.QuestionCount, &q.CreatedAt, &q.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

func (r *QuizRepo) Update(ctx context.Context, q *models.Quiz) error {
	q.UpdatedAt = time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET title = $1, description = $2, time_limit_seconds = $3,
		 questions_json = $4, question_count = $5, updated_at = $6 WHERE id = $7`,
		q.Title, q.Description, q.TimeLimitSeconds, q.QuestionsJSON, q.QuestionCount, q.UpdatedAt, q.ID,
	)
	return err
}

func (r *QuizRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM quizzes WHERE id = $1", id)
	return err
}
