package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "knowbase/docs" // registers the OpenAPI description
	"knowbase/internal/domain"
	"knowbase/internal/handler"
	"knowbase/internal/middleware"
	"knowbase/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Tenant     *handler.TenantHandler
	User       *handler.UserHandler
	Document   *handler.DocumentHandler
	Test       *handler.TestHandler
	Assignment *handler.AssignmentHandler
	Report     *handler.ReportHandler
	Health     *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(authSvc service.AuthService, h Handlers, corsOrigins []string, logger *slog.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	manager := middleware.RequireRole(domain.RoleManager)
	owner := middleware.RequireRole(domain.RoleOwner)

	protected.GET("/tenant", h.Tenant.Get)
	protected.PUT("/tenant", owner, h.Tenant.Update)

	users := protected.Group("/users")
	users.POST("", manager, h.User.Create)
	users.GET("", manager, h.User.List)
	users.GET("/:id", h.User.GetByID)
	users.PUT("/:id", h.User.Update)
	users.DELETE("/:id", manager, h.User.Delete)

	docs := protected.Group("/documents")
	docs.POST("/preview", manager, h.Document.Preview)
	docs.POST("", manager, h.Document.Upload)
	docs.GET("", h.Document.List)
	docs.GET("/:id", h.Document.GetByID)
	docs.GET("/:id/content", h.Document.GetContent)
	docs.GET("/:id/download", h.Document.Download)
	docs.POST("/:id/reparse", manager, h.Document.Reparse)
	docs.DELETE("/:id", manager, h.Document.Delete)

	tests := protected.Group("/tests")
	tests.POST("/generate", manager, h.Test.Generate)
	tests.POST("", manager, h.Test.Create)
	tests.GET("", manager, h.Test.List)
	tests.GET("/:id", h.Test.GetByID)
	tests.PUT("/:id/questions", manager, h.Test.UpdateQuestions)
	tests.DELETE("/:id", manager, h.Test.Delete)

	assignments := protected.Group("/assignments")
	assignments.POST("", manager, h.Assignment.Assign)
	assignments.GET("", manager, h.Assignment.List)
	assignments.GET("/mine", h.Assignment.Mine)
	assignments.GET("/:id", h.Assignment.GetByID)
	assignments.GET("/:id/submission", h.Assignment.GetSubmission)
	assignments.POST("/:id/start", h.Assignment.Start)
	assignments.POST("/:id/complete", h.Assignment.Complete)
	assignments.POST("/:id/submit", h.Assignment.Submit)

	protected.GET("/stats", h.Report.Stats)
	reports := protected.Group("/reports", manager)
	reports.GET("/progress", h.Report.Progress)
	reports.GET("/progress/export", h.Report.Export)

	return r
}
