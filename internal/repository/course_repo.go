package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"learnhub-backend/internal/models"
)

type CourseRepo struct {
	pool *pgxpool.Pool
}

func NewCourseRepo(pool *pgxpool.Pool) *CourseRepo {
	return &CourseRepo{pool: pool}
}

func (r *CourseRepo) Create(ctx context.Context, c *models.Course) error {
	c.ID = uuid.New()
	query := `INSERT INTO courses (id, instructor_id, title, description, is_published)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		c.ID, c.InstructorID, c.Title, c.Description, c.IsPublished,
	).Scan(&c.CreatedAt)
}

func (r *CourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	c := &models.Course{}
	query := `SELECT id, instructor_id, title, description, is_published, created_at
		FROM courses WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.InstructorID, &c.Title, &c.Description, &c.IsPublished, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CourseRepo) ListPublished(ctx context.Context) ([]*models.Course, error) {
	query := `SELECT id, instructor_id, title, description, is_published, created_at
		FROM courses WHERE is_published = TRUE ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		c := &models.Course{}
		err := rows.Scan(&c.ID, &c.InstructorID, &c.Title, &c.Description, &c.IsPublished, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// Enrollment

func (r *CourseRepo) Enroll(ctx context.Context, courseID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrollments (course_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (course_id, user_id) DO NOTHING`,
		courseID, userID,
	)
	return err
}

func (r *CourseRepo) IsEnrolled(ctx context.Context, courseID, userID uuid.UUID) (bool, error) {
	var enrolled bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM enrollments WHERE course_id = $1 AND user_id = $2)",
		courseID, userID,
	).Scan(&enrolled)
	return enrolled, err
}
