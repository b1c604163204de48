package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"learnhub-backend/internal/middleware"
	"learnhub-backend/internal/models"
	"learnhub-backend/internal/repository"
)

type CourseHandler struct {
	courseRepo *repository.CourseRepo
	quizRepo   *repository.QuizRepo
}

func NewCourseHandler(courseRepo *repository.CourseRepo, quizRepo *repository.QuizRepo) *CourseHandler {
	return &CourseHandler{courseRepo: courseRepo, quizRepo: quizRepo}
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseRepo.ListPublished(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch courses", r))
		return
	}
	if courses == nil {
		courses = []*models.Course{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid input", validationFields(err), r))
		return
	}

	course := &models.Course{
		InstructorID: middleware.GetUserID(r.Context()),
		Title:        req.Title,
		Description:  req.Description,
		IsPublished:  req.IsPublished,
	}

	if err := h.courseRepo.Create(r.Context(), course); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create course", r))
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid course ID", r))
		return
	}

	course, err := h.courseRepo.GetByID(r.Context(), courseID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Course not found", r))
		return
	}
	if !course.IsPublished {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Course is not open for enrollment", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.courseRepo.Enroll(r.Context(), courseID, userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to enroll", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Enrolled"})
}

func (h *CourseHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid course ID", r))
		return
	}

	quizzes, err := h.quizRepo.ListByCourse(r.Context(), courseID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch quizzes", r))
		return
	}

	// Course listings never expose answer keys.
	views := make([]*models.TakerQuizView, 0, len(quizzes))
	for _, quiz := range quizzes {
		views = append(views, quiz.TakerView())
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"quizzes": views})
}
