package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/learnora/learnora-backend/internal/config"
	"github.com/learnora/learnora-backend/internal/handler"
	"github.com/learnora/learnora-backend/internal/middleware"
	"github.com/learnora/learnora-backend/internal/response"
	"github.com/learnora/learnora-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth           *handler.AuthHandler
	Course         *handler.CourseHandler
	Order          *handler.OrderHandler
	InstructorQuiz *handler.InstructorQuizHandler
	StudentQuiz    *handler.StudentQuizHandler
	Progress       *handler.ProgressHandler
	Admin          *handler.AdminHandler
	WS             *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile route
		auth.GET("/me", middleware.RequireJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Public Catalog ─────────────────────────────────────────────
	catalog := router.Group("/api/v1/courses")
	{
		catalog.GET("", handlers.Course.ListCatalog)
		catalog.GET("/:course_id", handlers.Course.GetCourse)
	}

	// ─── 3. Student Group (Student JWT) ────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.POST("/orders", handlers.Order.CreateOrder)
		studentAPI.GET("/courses", handlers.Order.ListOwnedCourses)

		studentAPI.GET("/courses/:course_id/quizzes", handlers.StudentQuiz.ListCourseQuizzes)
		studentAPI.GET("/quizzes/:quiz_id", handlers.StudentQuiz.GetQuiz)
		studentAPI.POST("/quizzes/:quiz_id/attempts", handlers.StudentQuiz.StartAttempt)
		studentAPI.POST("/attempts/:attempt_id/submit", handlers.StudentQuiz.SubmitAttempt)
		studentAPI.GET("/attempts/:attempt_id", handlers.StudentQuiz.GetAttemptResults)

		studentAPI.GET("/courses/:course_id/progress", handlers.Progress.GetProgress)
		studentAPI.POST("/courses/:course_id/progress/lectures", handlers.Progress.RecordLectureView)
		studentAPI.POST("/courses/:course_id/progress/reset", handlers.Progress.ResetProgress)
	}

	// ─── 4. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/courses/:course_id/progress/stream", handlers.WS.ProgressStream)
	}

	// ─── 5. Instructor Group (Instructor JWT) ──────────────────────────
	instructorAPI := router.Group("/api/v1/instructor")
	instructorAPI.Use(middleware.RequireInstructorJWT(authService))
	{
		instructorAPI.GET("/courses", handlers.Course.ListOwnCourses)
		instructorAPI.POST("/courses", handlers.Course.CreateCourse)
		instructorAPI.PUT("/courses/:course_id", handlers.Course.UpdateCourse)
		instructorAPI.GET("/courses/:course_id/quizzes", handlers.InstructorQuiz.ListCourseQuizzes)

		instructorAPI.POST("/quizzes", handlers.InstructorQuiz.CreateQuiz)
		instructorAPI.GET("/quizzes/:quiz_id", handlers.InstructorQuiz.GetQuiz)
		instructorAPI.PUT("/quizzes/:quiz_id", handlers.InstructorQuiz.UpdateQuiz)
		instructorAPI.DELETE("/quizzes/:quiz_id", handlers.InstructorQuiz.DeleteQuiz)

		instructorAPI.GET("/reviews", handlers.InstructorQuiz.ListUnreviewed)
		instructorAPI.POST("/attempts/:attempt_id/questions/:question_id/review", handlers.InstructorQuiz.ReviewAnswer)
	}

	// ─── 6. Admin Group (Admin JWT) ────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/users", handlers.Admin.ListUsers)
		adminAPI.PUT("/users/:user_id/status", handlers.Admin.SetUserStatus)
		adminAPI.GET("/audit-logs", handlers.Admin.ListAuditLogs)
	}

	return router
}
