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

// InstructorQuizHandler handles quiz authoring, results, and manual review.
type InstructorQuizHandler struct {
	quizService   *service.QuizService
	reviewService *service.ReviewService
}

// NewInstructorQuizHandler creates a new InstructorQuizHandler.
func NewInstructorQuizHandler(quizService *service.QuizService, reviewService *service.ReviewService) *InstructorQuizHandler {
	return &InstructorQuizHandler{
		quizService:   quizService,
		reviewService: reviewService,
	}
}

// CreateQuiz godoc
// POST /api/v1/instructor/quizzes
func (h *InstructorQuizHandler) CreateQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), claims.Principal(), &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// UpdateQuiz godoc
// PUT /api/v1/instructor/quizzes/:quiz_id
func (h *InstructorQuizHandler) UpdateQuiz(c *gin.Context) {
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

	var req model.UpdateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Update(c.Request.Context(), claims.UserID, quizID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// DeleteQuiz godoc
// DELETE /api/v1/instructor/quizzes/:quiz_id
func (h *InstructorQuizHandler) DeleteQuiz(c *gin.Context) {
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

	if err := h.quizService.Delete(c.Request.Context(), claims.Principal(), quizID); err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "quiz deleted successfully"})
}

// GetQuiz godoc
// GET /api/v1/instructor/quizzes/:quiz_id
// Returns the full definition plus every student's results.
func (h *InstructorQuizHandler) GetQuiz(c *gin.Context) {
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

	quiz, results, err := h.quizService.GetForInstructor(c.Request.Context(), claims.UserID, quizID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz, "results": results})
}

// ListCourseQuizzes godoc
// GET /api/v1/instructor/courses/:course_id/quizzes
func (h *InstructorQuizHandler) ListCourseQuizzes(c *gin.Context) {
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

	quizzes, err := h.quizService.ListForCourseInstructor(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// ListUnreviewed godoc
// GET /api/v1/instructor/reviews
// Lists attempts awaiting manual review across the instructor's quizzes.
func (h *InstructorQuizHandler) ListUnreviewed(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attempts, err := h.quizService.ListUnreviewed(c.Request.Context(), claims.UserID)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

// ReviewAnswer godoc
// POST /api/v1/instructor/attempts/:attempt_id/questions/:question_id/review
// Assigns points to a manual-review answer and recomputes the attempt.
func (h *InstructorQuizHandler) ReviewAnswer(c *gin.Context) {
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
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReviewAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	attempt, err := h.reviewService.ReviewAnswer(c.Request.Context(), claims.Principal(), attemptID, questionID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}
