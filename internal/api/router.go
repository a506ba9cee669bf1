package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sitelabel/annotator/internal/api/handlers"
	"github.com/sitelabel/annotator/internal/api/middleware"
	"github.com/sitelabel/annotator/internal/config"
	"github.com/sitelabel/annotator/internal/services"
	"go.uber.org/zap"
)

func NewRouter(services *services.Services, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.BodyLimit(middleware.DefaultBodyLimit))

	// CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CorsOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// frames are already JPEG
	api := router.Group("/api", gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/api/videos/frame"})))
	{
		systemHandler := handlers.NewSystemHandler(cfg, services, logger)
		api.GET("/info", systemHandler.Info)
		api.GET("/stats", systemHandler.Stats)
		api.POST("/export", systemHandler.Export)

		videoHandler := handlers.NewVideoHandler(services, logger)
		api.GET("/subfolders", videoHandler.Subfolders)
		api.PUT("/scope", videoHandler.SetScope)

		videos := api.Group("/videos")
		{
			videos.GET("", videoHandler.List)
			videos.GET("/next", videoHandler.Next)
			videos.GET("/frame", videoHandler.Frame)
		}

		annotations := api.Group("/annotations")
		{
			annotationHandler := handlers.NewAnnotationHandler(services, logger)
			annotations.GET("", annotationHandler.Get)
			annotations.PUT("/status", annotationHandler.SetStatus)

			segments := annotations.Group("/segments")
			{
				segments.POST("", annotationHandler.AddSegment)
				segments.PUT("/:index", annotationHandler.UpdateSegment)
				segments.DELETE("/:index", annotationHandler.DeleteSegment)
			}
		}

		vocab := api.Group("/vocabulary")
		{
			vocabularyHandler := handlers.NewVocabularyHandler(services, logger)
			vocab.GET("", vocabularyHandler.List)
			vocab.GET("/pick", vocabularyHandler.Pick)
			vocab.POST("/:kind", vocabularyHandler.Add)
			vocab.DELETE("/:kind/:term", vocabularyHandler.Remove)
			vocab.POST("/:kind/:term/up", vocabularyHandler.MoveUp)
			vocab.POST("/:kind/:term/down", vocabularyHandler.MoveDown)
		}
	}

	return router
}
