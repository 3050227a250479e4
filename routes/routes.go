package routes

import (
	"net/http"
	"time"

	"jobsbreeze-backend/config"
	"jobsbreeze-backend/controllers"
	"jobsbreeze-backend/services"
	"jobsbreeze-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Config        *config.Config
	DB            *gorm.DB
	Estimates     *services.EstimateService
	Invoices      *services.InvoiceService
	Notifications *services.NotificationService
	Log           *zap.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	log := config.Named(d.Log, "http")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(config.PerformanceLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authController := &controllers.AuthController{
		DB:     d.DB,
		JWT:    d.Config.JWT,
		Secure: !d.Config.IsDevelopment(),
		Log:    log,
	}
	requireAuth := utils.AuthMiddleware(d.Config.JWT.Secret)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.GET("/me", requireAuth, authController.Me)
	}

	api := r.Group("/api")
	api.Use(requireAuth)
	{
		// Client routes
		clientController := &controllers.ClientController{DB: d.DB, Log: log}
		clients := api.Group("/clients")
		{
			clients.POST("", clientController.CreateClient)
			clients.GET("", clientController.GetClients)
			clients.GET("/:id", clientController.GetClient)
			clients.PUT("/:id", clientController.UpdateClient)
			clients.DELETE("/:id", clientController.DeleteClient)
		}

		// Catalog routes
		itemController := &controllers.ItemController{DB: d.DB, Log: log}
		items := api.Group("/items")
		{
			items.POST("", itemController.CreateItem)
			items.GET("", itemController.GetItems)
			items.GET("/:id", itemController.GetItem)
			items.PUT("/:id", itemController.UpdateItem)
			items.DELETE("/:id", itemController.DeleteItem)
		}

		// Estimate routes
		estimateController := &controllers.EstimateController{Estimates: d.Estimates, Log: log}
		estimates := api.Group("/estimates")
		{
			estimates.POST("", estimateController.CreateEstimate)
			estimates.POST("/preview", estimateController.PreviewEstimate)
			estimates.GET("", estimateController.GetEstimates)
			estimates.GET("/:id", estimateController.GetEstimate)
			estimates.PUT("/:id", estimateController.UpdateEstimate)
			estimates.DELETE("/:id", estimateController.DeleteEstimate)
			estimates.POST("/:id/finalize", estimateController.FinalizeEstimate)
			estimates.PUT("/:id/status", estimateController.UpdateEstimateStatus)
			estimates.POST("/:id/convert", estimateController.ConvertEstimate)
			estimates.POST("/:id/line-items", estimateController.AddLineItem)
			estimates.PUT("/:id/line-items/:lineId", estimateController.UpdateLineItem)
			estimates.DELETE("/:id/line-items/:lineId", estimateController.RemoveLineItem)
		}

		// Invoice routes
		invoiceController := &controllers.InvoiceController{Invoices: d.Invoices, Log: log}
		invoices := api.Group("/invoices")
		{
			invoices.POST("", invoiceController.CreateInvoice)
			invoices.GET("", invoiceController.GetInvoices)
			invoices.GET("/:id", invoiceController.GetInvoice)
			invoices.PUT("/:id", invoiceController.UpdateInvoice)
			invoices.DELETE("/:id", invoiceController.DeleteInvoice)
			invoices.POST("/:id/payments", invoiceController.RecordPayment)
		}

		notificationController := &controllers.NotificationController{Notifications: d.Notifications, Log: log}
		api.GET("/notifications", notificationController.GetNotifications)

		// Reports and dashboard
		reportController := &controllers.ReportController{DB: d.DB, Log: log}
		api.GET("/reports", reportController.GetReportAnalytics)
		dashboardController := &controllers.DashboardController{DB: d.DB, Log: log}
		api.GET("/dashboard", dashboardController.GetDashboardOverview)

		// Settings routes
		profileController := &controllers.ProfileController{DB: d.DB, Log: log}
		profile := api.Group("/profile")
		{
			profile.GET("", profileController.GetProfile)
			profile.PUT("", profileController.UpdateProfile)
		}
	}

	return r
}
