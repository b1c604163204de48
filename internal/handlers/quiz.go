package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"learnhub-backend/internal/middleware"
	"learnhub-backend/internal/models"
	"learnhub-backend/internal/repository"
	"learnhub-backend/internal/services"
)

type QuizHandler struct {
	quizService *services.QuizService
	quizRepo    *repository.QuizRepo
	courseRepo  *repository.CourseRepo
}

func NewQuizHandler(quizService *services.QuizService, quizRepo *repository.QuizRepo, courseRepo *repository.CourseRepo) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		quizRepo:    quizRepo,
		courseRepo:  courseRepo,
	}
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid input", validationFields(err), r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	// The quiz must hang off a course the caller owns.
	course, err := h.courseRepo.GetByID(r.Context(), req.CourseID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Course not found", r))
		return
	}
	if course.InstructorID != userID && middleware.GetUserRole(r.Context()) != models.RoleAdmin {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	quiz, err := h.quizService.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, quiz)
}

// Get serves the full definition (answer keys included) to the quiz owner,
// and the sanitized taker view to everyone else.
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}

	if h.isOwner(r, quiz) {
		writeJSON(w, http.StatusOK, quiz)
		return
	}

	writeJSON(w, http.StatusOK, quiz.TakerView())
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	if !h.isOwner(r, quiz) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	var req models.UpdateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid input", validationFields(err), r))
		return
	}

	job, err := h.quizService.Update(r.Context(), quiz, middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// job is nil when the edit did not touch the answer key.
	resp := map[string]interface{}{"quiz": quiz}
	if job != nil {
		resp["regrade_job_id"] = job.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	quiz, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	if !h.isOwner(r, quiz) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	if err := h.quizService.Delete(r.Context(), quiz.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete quiz", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz deleted"})
}

func (h *QuizHandler) loadQuiz(w http.ResponseWriter, r *http.Request) (*models.Quiz, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid quiz ID", r))
		return nil, false
	}

	quiz, err := h.quizRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Quiz not found", r))
		} else {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch quiz", r))
		}
		return nil, false
	}
	return quiz, true
}

func (h *QuizHandler) isOwner(r *http.Request, quiz *models.Quiz) bool {
	userID := middleware.GetUserID(r.Context())
	return quiz.CreatedBy == userID || middleware.GetUserRole(r.Context()) == models.RoleAdmin
}
