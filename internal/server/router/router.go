package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. The
// WhatsApp webhook is only mounted when webhookHandler is non-nil.
func New(ledgerHandler *handlers.LedgerHandler, reportsHandler *handlers.ReportsHandler, webhookHandler *handlers.WebhookHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if webhookHandler != nil {
		r.GET("/webhook", webhookHandler.Verify)
		r.POST("/webhook", webhookHandler.Receive)
	}

	api := r.Group("/api")
	{
		api.GET("/state", ledgerHandler.State)
		api.POST("/production", ledgerHandler.Produce)
		api.POST("/distribution", ledgerHandler.Distribute)

		api.GET("/stores/:store/inventory", ledgerHandler.StoreInventory)
		api.POST("/stores/:store/closing", ledgerHandler.CloseStore)

		api.PATCH("/buckets/:id", ledgerHandler.UpdateBucket)
		api.DELETE("/buckets/:id", ledgerHandler.DeleteBucket)

		api.GET("/flavors", ledgerHandler.ListFlavors)
		api.POST("/flavors", ledgerHandler.CreateFlavor)
		api.PUT("/flavors/:id", ledgerHandler.UpdateFlavor)
		api.PUT("/flavors/:id/active", ledgerHandler.SetFlavorActive)

		api.GET("/categories", ledgerHandler.ListCategories)
		api.POST("/categories", ledgerHandler.CreateCategory)
		api.PUT("/categories/:id", ledgerHandler.RenameCategory)
		api.DELETE("/categories/:id", ledgerHandler.DeleteCategory)

		api.GET("/notifications", ledgerHandler.ListNotifications)
		api.DELETE("/notifications/:id", ledgerHandler.DismissNotification)

		reports := api.Group("/reports")
		reports.GET("/dashboard", reportsHandler.Dashboard)
		reports.GET("/matrix", reportsHandler.Matrix)
		reports.GET("/production", reportsHandler.Production)
		reports.GET("/top", reportsHandler.Top)
		reports.GET("/closings", reportsHandler.Closings)

		api.GET("/export/json", reportsHandler.ExportJSON)
		api.POST("/import/json", reportsHandler.ImportJSON)
		api.GET("/export/csv", reportsHandler.ExportCSV)

		api.GET("/insights", reportsHandler.Insights)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
