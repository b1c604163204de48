package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"learnhub-backend/internal/middleware"
	"learnhub-backend/internal/models"
)

// submissionService is the grading core boundary consumed by this handler.
type submissionService interface {
	Submit(ctx context.Context, quizID, userID uuid.UUID, answers []models.SubmittedAnswer, durationSeconds int) (*models.SubmissionResult, error)
	History(ctx context.Context, quizID, userID uuid.UUID) ([]*models.Submission, error)
}

type accessChecker interface {
	GetForGrading(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	CanAccess(ctx context.Context, quiz *models.Quiz, userID uuid.UUID, role string) (bool, error)
}

type SubmissionHandler struct {
	submissions submissionService
	access      accessChecker
}

func NewSubmissionHandler(submissions submissionService, access accessChecker) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, access: access}
}

func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid quiz ID", r))
		return
	}

	var req models.SubmitQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid input", validationFields(err), r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if !h.authorize(w, r, quizID, userID) {
		return
	}

	result, err := h.submissions.Submit(r.Context(), quizID, userID, req.Answers, req.DurationSeconds)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *SubmissionHandler) History(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid quiz ID", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if !h.authorize(w, r, quizID, userID) {
		return
	}

	submissions, err := h.submissions.History(r.Context(), quizID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": submissions})
}

// authorize confirms the caller may touch this quiz: enrolled in its course,
// or its owner, or an admin. Writes the error response on failure.
func (h *SubmissionHandler) authorize(w http.ResponseWriter, r *http.Request, quizID, userID uuid.UUID) bool {
	quiz, err := h.access.GetForGrading(r.Context(), quizID)
	if err != nil {
		writeServiceError(w, r, err)
		return false
	}

	allowed, err := h.access.CanAccess(r.Context(), quiz, userID, middleware.GetUserRole(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to check enrollment", r))
		return false
	}
	if !allowed {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "You are not enrolled in this course", r))
		return false
	}
	return true
}
