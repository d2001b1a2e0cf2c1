package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"datahub-backend/internal/shared/middleware"
	"datahub-backend/pkg/container"
)

// Uploads larger than this are spooled to disk by net/http.
const maxMultipartMemory = 16 << 20

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.AllowedOrigins),
	)

	// DOI landing pages live outside the API prefix.
	router.GET("/doi/*doi", middleware.OptionalAuth(c.JWTManager), c.DataSetHandler.ViewByDOI)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
		v1.GET("/stats", c.DataSetHandler.Stats)

		setupDataSetRoutes(v1, c)
		setupHubfileRoutes(v1, c)
	}

	return router
}

// ========================================
// DATASET ROUTES
// ========================================
func setupDataSetRoutes(v1 *gin.RouterGroup, c *container.Container) {
	h := c.DataSetHandler
	auth := middleware.AuthMiddleware(c.JWTManager)
	optional := middleware.OptionalAuth(c.JWTManager)

	datasets := v1.Group("/datasets")
	{
		// Public
		datasets.GET("/export.xlsx", h.ExportCatalogue)
		datasets.GET("/:id/download", optional, h.DownloadDataSet)

		// Owner only
		datasets.POST("/files", auth, h.UploadFile)
		datasets.DELETE("/files/:name", auth, h.DeleteFile)
		datasets.POST("", auth, h.CreateDataSet)
		datasets.GET("", auth, h.ListDataSets)
		datasets.GET("/unsynchronized/:id", auth, h.GetUnsynchronized)
		datasets.GET("/:id/edit", auth, h.EditForm)
		datasets.PUT("/:id", auth, h.UpdateDataSet)
	}
}

// ========================================
// HUBFILE ROUTES
// ========================================
func setupHubfileRoutes(v1 *gin.RouterGroup, c *container.Container) {
	h := c.DataSetHandler

	hubfiles := v1.Group("/hubfiles")
	hubfiles.Use(middleware.OptionalAuth(c.JWTManager))
	{
		hubfiles.GET("/:id", h.ViewHubfile)
		hubfiles.GET("/:id/download", h.DownloadHubfile)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		redisStatus := "ok"
		if appCtx.Redis == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Redis.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		storageStatus := "disabled"
		if appCtx.MinIO != nil {
			storageStatus = "ok"
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.MinIO.Ping(ctx); err != nil {
				storageStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database":       dbStatus,
			"redis":          redisStatus,
			"object_storage": storageStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
