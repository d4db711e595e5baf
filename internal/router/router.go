// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/earl-stephens/little-shop-base/internal/config"
	"github.com/earl-stephens/little-shop-base/internal/handlers"
	"github.com/earl-stephens/little-shop-base/internal/middleware"
	"github.com/earl-stephens/little-shop-base/internal/services"
	"github.com/earl-stephens/little-shop-base/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	authService := services.NewAuthService(db, cfg)
	itemService := services.NewItemService(db)
	dashboardService := services.NewDashboardService(db)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(itemService, dashboardService, adminService, storageService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, adminService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Merchant dashboard routes
		dashboard := v1.Group("/dashboard")
		dashboard.Use(middleware.AuthRequired(), middleware.MerchantOrAdminRequired())
		{
			dashboard.GET("/stats", dashboardHandler.GetStats)

			items := dashboard.Group("/items")
			{
				items.GET("", itemHandler.ListItems)
				items.GET("/new", itemHandler.NewItem)
				items.POST("", itemHandler.CreateItem)
				items.GET("/:id/edit", itemHandler.EditItem)
				items.PUT("/:id", itemHandler.UpdateItem)
				items.PATCH("/:id/enable", itemHandler.EnableItem)
				items.PATCH("/:id/disable", itemHandler.DisableItem)
				items.DELETE("/:id", itemHandler.DeleteItem)
				items.POST("/upload-image", middleware.UploadRateLimit(), itemHandler.UploadItemImage)
			}
		}

		// Admin routes; the same item handlers run here with the target
		// merchant taken from the URL instead of the session
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/merchants", adminHandler.ListMerchants)
			admin.GET("/merchants/:merchant_id", adminHandler.GetMerchant)
			admin.GET("/merchants/:merchant_id/stats", dashboardHandler.GetMerchantStats)

			merchantItems := admin.Group("/merchants/:merchant_id/items")
			{
				merchantItems.GET("", itemHandler.ListItems)
				merchantItems.GET("/new", itemHandler.NewItem)
				merchantItems.POST("", itemHandler.CreateItem)
				merchantItems.GET("/:id/edit", itemHandler.EditItem)
				merchantItems.PUT("/:id", itemHandler.UpdateItem)
				merchantItems.PATCH("/:id/enable", itemHandler.EnableItem)
				merchantItems.PATCH("/:id/disable", itemHandler.DisableItem)
				merchantItems.DELETE("/:id", itemHandler.DeleteItem)
			}
		}
	}

	return r
}
