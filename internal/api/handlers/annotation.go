package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/sitelabel/annotator/internal/errors"
	"github.com/sitelabel/annotator/internal/models"
	"github.com/sitelabel/annotator/internal/services"
	"go.uber.org/zap"
)

type AnnotationHandler struct {
	services *services.Services
	logger   *zap.Logger
}

func NewAnnotationHandler(services *services.Services, logger *zap.Logger) *AnnotationHandler {
	return &AnnotationHandler{
		services: services,
		logger:   logger,
	}
}

// AddSegmentRequest is the body of POST /api/annotations/segments
type AddSegmentRequest struct {
	Path string `json:"path" binding:"required"`
	models.SegmentInput
}

// UpdateSegmentRequest is the body of PUT /api/annotations/segments/:index
type UpdateSegmentRequest struct {
	Path string `json:"path" binding:"required"`
	models.SegmentPatch
}

// SetStatusRequest is the body of PUT /api/annotations/status
type SetStatusRequest struct {
	Path   string `json:"path" binding:"required"`
	Status string `json:"status" binding:"required,oneof=未标注 已标注 非必要 unannotated annotated not-needed"`
}

func (h *AnnotationHandler) Get(c *gin.Context) {
	video, err := resolveVideo(h.services, c.Query("path"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.services.Annotation.Open(c.Request.Context(), video))
}

func (h *AnnotationHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	video, err := resolveVideo(h.services, req.Path)
	if err != nil {
		respondError(c, err)
		return
	}

	status, _ := models.ParseStatus(req.Status)
	annotation, err := h.services.Annotation.SetStatus(c.Request.Context(), video, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, annotation)
}

func (h *AnnotationHandler) AddSegment(c *gin.Context) {
	var req AddSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	video, err := resolveVideo(h.services, req.Path)
	if err != nil {
		respondError(c, err)
		return
	}

	annotation, err := h.services.Annotation.AddSegment(c.Request.Context(), video, req.SegmentInput)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, annotation)
}

func (h *AnnotationHandler) UpdateSegment(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, apperrors.InvalidInput("segment index must be a number"))
		return
	}

	var req UpdateSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	video, err := resolveVideo(h.services, req.Path)
	if err != nil {
		respondError(c, err)
		return
	}

	annotation, err := h.services.Annotation.UpdateSegment(c.Request.Context(), video, index, req.SegmentPatch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, annotation)
}

// DeleteSegment removes a segment by index, or the newest one for "last"
func (h *AnnotationHandler) DeleteSegment(c *gin.Context) {
	video, err := resolveVideo(h.services, c.Query("path"))
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	var annotation *models.Annotation
	if param := c.Param("index"); param == "last" {
		annotation, err = h.services.Annotation.DeleteLastSegment(ctx, video)
	} else {
		index, convErr := strconv.Atoi(param)
		if convErr != nil {
			respondError(c, apperrors.InvalidInput("segment index must be a number or \"last\""))
			return
		}
		annotation, err = h.services.Annotation.DeleteSegment(ctx, video, index)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, annotation)
}
