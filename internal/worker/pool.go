package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"learnhub-backend/internal/grading"
	"learnhub-backend/internal/models"
)

const regradeQueue = "queue:" + models.JobTypeQuizRegrade

// jobStore is the job bookkeeping surface the pool needs.
type jobStore interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateError(ctx context.Context, id uuid.UUID, errMsg string, retryCount int) error
}

type quizSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
}

type submissionStore interface {
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]*models.Submission, error)
	UpdateScores(ctx context.Context, id uuid.UUID, score, highestScore int) error
}

// Pool drains the regrade queue. When an instructor changes a quiz's answer
// key, every ledger row for that quiz is re-scored against the new key.
// Grading is deterministic, so a regrade is a pure recomputation over the
// stored answers; the old watermark is meaningless under a new key and is
// reset to the recomputed score.
type Pool struct {
	redis          *redis.Client
	jobRepo        jobStore
	quizRepo       quizSource
	submissionRepo submissionStore
	workerCount    int
	stopChan       chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	jobRepo jobStore,
	quizRepo quizSource,
	submissionRepo submissionStore,
	workerCount int,
) *Pool {
	return &Pool{
		redis:          redisClient,
		jobRepo:        jobRepo,
		quizRepo:       quizRepo,
		submissionRepo: submissionRepo,
		workerCount:    workerCount,
		stopChan:       make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d regrade worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, regradeQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock so a job is processed by one worker only
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)

		p.jobRepo.UpdateStatus(ctx, job.ID, "processing")

		var processErr error
		var regraded, questionTotal int
		switch job.Type {
		case models.JobTypeQuizRegrade:
			regraded, questionTotal, processErr = p.processRegrade(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type: %s", job.Type)
		}

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job, regraded, questionTotal)
		}

		p.redis.Del(ctx, lockKey)
	}
}

// processRegrade re-scores every ledger row of the job's quiz against the
// quiz's current question list. Rows whose stored answers no longer decode
// grade as fully incorrect rather than aborting the job.
func (p *Pool) processRegrade(ctx context.Context, job *models.Job) (int, int, error) {
	quiz, err := p.quizRepo.GetByID(ctx, job.ReferenceID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load quiz %s: %w", job.ReferenceID, err)
	}

	questions := quiz.Questions()

	submissions, err := p.submissionRepo.ListByQuiz(ctx, quiz.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list submissions for quiz %s: %w", quiz.ID, err)
	}

	regraded := 0
	for _, submission := range submissions {
		var answers []models.SubmittedAnswer
		if len(submission.AnswersJSON) > 0 {
			json.Unmarshal(submission.AnswersJSON, &answers)
		}

		_, summary := grading.GradeQuiz(questions, answers)

		if err := p.submissionRepo.UpdateScores(ctx, submission.ID, summary.Score, summary.Score); err != nil {
			return regraded, len(questions), fmt.Errorf("failed to update submission %s: %w", submission.ID, err)
		}
		regraded++
	}

	return regraded, len(questions), nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job, regraded, questionTotal int) {
	p.jobRepo.UpdateStatus(ctx, job.ID, "completed")

	p.publish(ctx, job.UserID, models.WSMessage{
		Type: "regrade_completed",
		Payload: models.RegradeCompletedEvent{
			JobID:         job.ID,
			QuizID:        job.ReferenceID,
			RegradedCount: regraded,
			QuestionTotal: questionTotal,
		},
	})

	log.Printf("Job %s completed successfully (%d submissions regraded)", job.ID, regraded)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if job.RetryCount < job.MaxRetries {
		log.Printf("Job %s failed (attempt %d): %s - retrying", job.ID, job.RetryCount, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, "pending")
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		// Re-queue after backoff
		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), regradeQueue, string(jobBytes))
		})
		return
	}

	log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
	p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
	p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

	p.publish(ctx, job.UserID, models.WSMessage{
		Type: "error",
		Payload: models.JobFailedEvent{
			JobID:        job.ID,
			ErrorCode:    "JOB_FAILED",
			ErrorMessage: errMsg,
		},
	})
}

func (p *Pool) publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	p.redis.Publish(ctx, "user_updates:"+userID.String(), data)
}
