package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/learnora/learnora-backend/internal/middleware"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/response"
	"github.com/learnora/learnora-backend/internal/service"
	"github.com/learnora/learnora-backend/internal/validator"
)

// StudentQuizHandler handles the student quiz lifecycle: browsing,
// starting, submitting, and viewing results.
type StudentQuizHandler struct {
	quizService    *service.QuizService
	attemptService *service.AttemptService
}

// NewStudentQuizHandler creates a new StudentQuizHandler.
func NewStudentQuizHandler(quizService *service.QuizService, attemptService *service.AttemptService) *StudentQuizHandler {
	return &StudentQuizHandler{
		quizService:    quizService,
		attemptService: attemptService,
	}
}

// ListCourseQuizzes godoc
// GET /api/v1/student/courses/:course_id/quizzes
// Lists visible quizzes with the student's attempt history. Lesson quizzes
// stay hidden until their lecture is fully watched.
func (h *StudentQuizHandler) ListCourseQuizzes(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	entries, err := h.quizService.ListForCourseStudent(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": entries})
}

// GetQuiz godoc
// GET /api/v1/student/quizzes/:quiz_id
// Returns the redacted quiz payload and the student's attempt summaries.
func (h *StudentQuizHandler) GetQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quiz, attempts, err := h.quizService.GetForStudent(c.Request.Context(), claims.UserID, quizID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz, "attempts": attempts})
}

// StartAttempt godoc
// POST /api/v1/student/quizzes/:quiz_id/attempts
func (h *StudentQuizHandler) StartAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, err := uuid.Parse(c.Param("quiz_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempt, err := h.attemptService.Start(c.Request.Context(), claims.UserID, quizID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// SubmitAttempt godoc
// POST /api/v1/student/attempts/:attempt_id/submit
// Grades the attempt. A concurrent duplicate submission gets 409.
func (h *StudentQuizHandler) SubmitAttempt(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), claims.UserID, attemptID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetAttemptResults godoc
// GET /api/v1/student/attempts/:attempt_id
func (h *StudentQuizHandler) GetAttemptResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	detail, err := h.attemptService.Results(c.Request.Context(), claims.UserID, attemptID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}
