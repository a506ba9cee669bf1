package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/sitelabel/annotator/internal/errors"
	"github.com/sitelabel/annotator/internal/models"
	"github.com/sitelabel/annotator/internal/services"
	"github.com/sitelabel/annotator/internal/timecode"
	"go.uber.org/zap"
)

type VideoHandler struct {
	services *services.Services
	logger   *zap.Logger
}

func NewVideoHandler(services *services.Services, logger *zap.Logger) *VideoHandler {
	return &VideoHandler{
		services: services,
		logger:   logger,
	}
}

// ScopeRequest selects a subfolder; an empty subfolder selects the whole root
type ScopeRequest struct {
	Subfolder string `json:"subfolder"`
}

// List returns the videos in scope after rescanning it
func (h *VideoHandler) List(c *gin.Context) {
	h.services.Catalog.Refresh()
	entries := h.services.Annotation.Entries()

	c.JSON(http.StatusOK, gin.H{
		"scope":    h.scopeName(),
		"videos":   entries,
		"progress": h.services.Annotation.Progress(),
	})
}

func (h *VideoHandler) Next(c *gin.Context) {
	from := -1
	if raw := c.Query("from"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperrors.InvalidInput("from must be a number"))
			return
		}
		from = n
	}

	entry, ok := h.services.Annotation.NextUnannotated(from)
	if !ok {
		respondError(c, apperrors.NotFound("unannotated video", from))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Frame renders the frame at ?t=MM:SS.mmm as a JPEG image
func (h *VideoHandler) Frame(c *gin.Context) {
	video, err := resolveVideo(h.services, c.Query("path"))
	if err != nil {
		respondError(c, err)
		return
	}

	at := 0.0
	if raw := c.Query("t"); raw != "" {
		at, err = timecode.Parse(raw)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	data, err := h.services.Frame.Capture(c.Request.Context(), video, at)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (h *VideoHandler) Subfolders(c *gin.Context) {
	catalog := h.services.Catalog
	dirs := catalog.ListSubfolders()

	subfolders := make([]models.Subfolder, 0, len(dirs))
	for _, dir := range dirs {
		subfolders = append(subfolders, models.Subfolder{
			Path:        catalog.Rel(dir),
			DisplayName: catalog.SubfolderDisplayName(dir),
			VideoCount:  catalog.VideoCountIn(dir),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"scope":      h.scopeName(),
		"subfolders": subfolders,
	})
}

func (h *VideoHandler) SetScope(c *gin.Context) {
	var req ScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if req.Subfolder == "" {
		h.services.Catalog.UseRoot()
	} else if err := h.services.Catalog.UseSubfolder(req.Subfolder); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scope":  h.scopeName(),
		"videos": h.services.Catalog.Len(),
	})
}

func (h *VideoHandler) scopeName() string {
	if scope := h.services.Catalog.Scope(); scope != "" {
		return h.services.Catalog.Rel(scope)
	}
	return ""
}
