package router

import (
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/config"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/handler"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/middleware"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/response"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Candidate   *handler.CandidateHandler
	ExamSession *handler.ExamSessionHandler
	Question    *handler.QuestionHandler
	WS          *handler.WSHandler
	Monitor     *handler.MonitorHandler
	System      *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	joinLimiter *middleware.RateLimiter,
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.GET("/health", middleware.CacheControl(5), handlers.System.Health)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/admin/login", joinLimiter.Middleware(), handlers.Auth.AdminLogin)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Candidate Group ────────────────────────────────────────────
	candidate := router.Group("/api/v1/candidate")
	candidate.Use(middleware.NoStore())
	{
		// Throttled per IP against exam token guessing.
		candidate.POST("/join", joinLimiter.Middleware(), handlers.Candidate.JoinExam)

		exam := candidate.Group("/exam")
		exam.Use(
			middleware.RequireCandidateJWT(authService),
			middleware.CheckSingleDeviceSession(authService),
		)
		{
			exam.POST("/start", handlers.Candidate.StartExam)
			exam.GET("/state", handlers.Candidate.GetState)
			exam.PUT("/answers/:index", handlers.Candidate.SubmitAnswer)
			exam.POST("/navigate", handlers.Candidate.Navigate)
			exam.POST("/submit", handlers.Candidate.SubmitExam)
			exam.POST("/violations", handlers.Candidate.ReportViolation)
		}
	}

	// ─── 3. WebSocket Group (Candidate WS Auth) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireCandidateWSAuth(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/candidate/exam/stream", handlers.WS.ExamStream)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(
		middleware.RequireAdminJWT(authService),
		middleware.Brotli(cfg.BrotliQuality),
	)
	{
		questions := adminAPI.Group("/questions")
		{
			questions.GET("", middleware.RequirePermission(model.PermissionQuestionsRead), handlers.Question.ListQuestions)
			questions.GET("/:id", middleware.RequirePermission(model.PermissionQuestionsRead), handlers.Question.GetQuestion)
			questions.POST("", middleware.RequirePermission(model.PermissionQuestionsWrite), handlers.Question.CreateQuestion)
		}

		sessions := adminAPI.Group("/exam-sessions")
		{
			sessions.GET("", middleware.RequirePermission(model.PermissionSessionsRead), handlers.ExamSession.ListSessions)
			sessions.POST("", middleware.RequirePermission(model.PermissionSessionsWrite), handlers.ExamSession.CreateSession)
			sessions.GET("/:id", middleware.RequirePermission(model.PermissionSessionsRead), handlers.ExamSession.GetSession)
			sessions.GET("/:id/result", middleware.RequirePermission(model.PermissionResultsRead), handlers.ExamSession.GetResult)

			control := middleware.RequirePermission(model.PermissionSessionsControl)
			sessions.POST("/:id/pause", control, handlers.ExamSession.PauseSession)
			sessions.POST("/:id/resume", control, handlers.ExamSession.ResumeSession)
			sessions.POST("/:id/submit", control, handlers.ExamSession.ForceSubmit)
		}

		adminAPI.GET("/results/export", middleware.RequirePermission(model.PermissionResultsRead), handlers.ExamSession.ExportResults)

		monitor := adminAPI.Group("/monitor", middleware.RequirePermission(model.PermissionMonitorRead))
		{
			monitor.GET("/overview", handlers.Monitor.Overview)
			monitor.GET("/stream", handlers.Monitor.MonitorSSE)
		}

		adminAPI.GET("/system/stats", middleware.RequirePermission(model.PermissionMonitorRead), handlers.System.Stats)
	}

	return router
}
