package routes

import (
	"promoshow/handlers"
	"promoshow/media"
	"promoshow/middleware"
	"promoshow/promotions"
	"promoshow/session"
	"promoshow/viewer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Users           session.CredentialStore
	UsersCollection string
	Repo            *promotions.Repository
	Viewers         *viewer.Registry
	Cache           media.Cache
	DownloadName    string
	LoginLimiter    *middleware.RateLimiter
	Logger          *zap.Logger
}

func SetupRoutes(r *gin.Engine, d Deps) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{Users: d.Users, Collection: d.UsersCollection, Logger: d.Logger}
	promotionHandler := &handlers.PromotionHandler{
		Repo:         d.Repo,
		Viewers:      d.Viewers,
		Cache:        d.Cache,
		DownloadName: d.DownloadName,
		Logger:       d.Logger,
	}
	viewerHandler := &handlers.ViewerHandler{Viewers: d.Viewers, Logger: d.Logger}

	// Public routes
	api := r.Group("/api")
	{
		login := []gin.HandlerFunc{authHandler.Login}
		if d.LoginLimiter != nil {
			login = append([]gin.HandlerFunc{d.LoginLimiter.Middleware()}, login...)
		}
		api.POST("/auth/login", login...)

		api.GET("/promotions", promotionHandler.GetPromotions)
		api.GET("/promotions/:id", promotionHandler.GetPromotion)
		api.GET("/promotions/:id/image", promotionHandler.DownloadImage)
	}

	// Viewer routes: anonymous allowed, the identity only changes the offered actions
	view := api.Group("/viewer")
	view.Use(middleware.OptionalAuthMiddleware())
	{
		view.GET("", viewerHandler.GetViewer)
		view.POST("/tap", viewerHandler.Tap)
		view.POST("/navigate/:direction", viewerHandler.Navigate)
		view.POST("/reload", viewerHandler.Reload)
		view.POST("/share", viewerHandler.Share)
		view.POST("/download", viewerHandler.Download)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/promotions", promotionHandler.CreatePromotion)
		admin.DELETE("/promotions/:id", promotionHandler.DeletePromotion)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
