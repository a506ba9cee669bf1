package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/sitelabel/annotator/internal/errors"
	"github.com/sitelabel/annotator/internal/services"
	"github.com/sitelabel/annotator/internal/vocabulary"
	"go.uber.org/zap"
)

type VocabularyHandler struct {
	services *services.Services
	logger   *zap.Logger
}

func NewVocabularyHandler(services *services.Services, logger *zap.Logger) *VocabularyHandler {
	return &VocabularyHandler{
		services: services,
		logger:   logger,
	}
}

type TermRequest struct {
	Term string `json:"term" binding:"required"`
}

func (h *VocabularyHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.lists())
}

func (h *VocabularyHandler) Add(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	var req TermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	added, err := h.services.Vocabulary.Add(kind, req.Term)
	h.respond(c, added, err)
}

func (h *VocabularyHandler) Remove(c *gin.Context) {
	h.edit(c, h.services.Vocabulary.Remove)
}

func (h *VocabularyHandler) MoveUp(c *gin.Context) {
	h.edit(c, h.services.Vocabulary.MoveUp)
}

func (h *VocabularyHandler) MoveDown(c *gin.Context) {
	h.edit(c, h.services.Vocabulary.MoveDown)
}

// Pick resolves a quick-select number: ?n=3&noun=<current noun>
func (h *VocabularyHandler) Pick(c *gin.Context) {
	n, err := strconv.Atoi(c.Query("n"))
	if err != nil {
		respondError(c, apperrors.InvalidInput("n must be a number"))
		return
	}

	kind, term, ok := h.services.Vocabulary.QuickSelect(n, c.Query("noun"))
	c.JSON(http.StatusOK, gin.H{
		"kind":     kind,
		"term":     term,
		"selected": ok,
	})
}

func (h *VocabularyHandler) edit(c *gin.Context, fn func(vocabulary.Kind, string) (bool, error)) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	changed, err := fn(kind, c.Param("term"))
	h.respond(c, changed, err)
}

func (h *VocabularyHandler) respond(c *gin.Context, changed bool, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	body := h.lists()
	body["changed"] = changed
	c.JSON(http.StatusOK, body)
}

func (h *VocabularyHandler) kind(c *gin.Context) (vocabulary.Kind, bool) {
	kind, ok := vocabulary.ParseKind(c.Param("kind"))
	if !ok {
		respondError(c, apperrors.InvalidInput("unknown vocabulary %q, expected nouns or verbs", c.Param("kind")))
	}
	return kind, ok
}

func (h *VocabularyHandler) lists() gin.H {
	return gin.H{
		"nouns": h.services.Vocabulary.Terms(vocabulary.Nouns),
		"verbs": h.services.Vocabulary.Terms(vocabulary.Verbs),
	}
}
