package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitelabel/annotator/internal/config"
	"github.com/sitelabel/annotator/internal/services"
	"github.com/sitelabel/annotator/internal/version"
	"go.uber.org/zap"
)

type SystemHandler struct {
	config   *config.Config
	services *services.Services
	logger   *zap.Logger
}

func NewSystemHandler(cfg *config.Config, services *services.Services, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{
		config:   cfg,
		services: services,
		logger:   logger,
	}
}

func (h *SystemHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":           "annotator",
		"version":        version.Version,
		"video_dir":      h.config.Paths.VideoDir,
		"annotation_dir": h.config.Paths.AnnotationDir,
		"export_path":    h.config.Paths.ExportPath,
		"annotator":      h.config.Annotation.Annotator,
	})
}

// Stats returns the status counts and progress of the current scope
func (h *SystemHandler) Stats(c *gin.Context) {
	progress := h.services.Annotation.Progress()
	resp := gin.H{
		"total":     progress.Total,
		"annotated": progress.Annotated,
		"ratio":     progress.Ratio,
		"counts":    progress.Counts,
	}
	if c.Query("footage") == "true" {
		resp["footage"] = h.services.Stats.Footage()
	}
	c.JSON(http.StatusOK, resp)
}

// Export writes the bundle of the current scope
func (h *SystemHandler) Export(c *gin.Context) {
	result, err := h.services.Export.ExportAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
