package routes

import (
	"github.com/gin-gonic/gin"

	"leadcrm/internal/handlers"
)

// SetupRoutes mounts the API. requireSession guards /api/auth/check and every lead route.
func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	leadHandler *handlers.LeadHandler,
	healthHandler *handlers.HealthHandler,
	requireSession gin.HandlerFunc,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", healthHandler.Health)

	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/check", requireSession, authHandler.Check)
	}

	// ---- protected
	leads := r.Group("/api/lead/leads", requireSession)
	{
		leads.POST("", leadHandler.Create)
		leads.GET("", leadHandler.List)
		leads.GET("/export", leadHandler.Export)
		leads.GET("/:id", leadHandler.GetByID)
		leads.PUT("/:id", leadHandler.Update)
		leads.DELETE("/:id", leadHandler.Delete)
	}

	return r
}
