package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/codeladder/exam-backend/internal/config"
	"github.com/codeladder/exam-backend/internal/handler"
	"github.com/codeladder/exam-backend/internal/middleware"
	"github.com/codeladder/exam-backend/internal/response"
	"github.com/codeladder/exam-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Attempt *handler.AttemptHandler
	WS      *handler.WSHandler
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
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

	// ─── Student API ───────────────────────────────────────────────────
	student := router.Group("/api/v1/student")
	student.Use(middleware.RequireStudentJWT(authService))
	{
		student.POST("/attempts", handlers.Attempt.StartAttempt)
		student.GET("/attempts/:attempt_id", handlers.Attempt.GetAttempt)
	}

	// ─── Exam session stream ───────────────────────────────────────────
	// WebSocket upgrades cannot set an Authorization header from browsers,
	// so the stream authenticates via ?token=.
	stream := router.Group("/ws/v1")
	stream.Use(middleware.RequireStudentWSAuth(authService))
	{
		stream.GET("/attempts/stream", handlers.WS.Stream)
	}

	return router
}
