package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	apperrors "github.com/sitelabel/annotator/internal/errors"
	"github.com/sitelabel/annotator/internal/services"
)

// respondError writes {code, message, details} with the status matching the
// error category
func respondError(c *gin.Context, err error) {
	body := gin.H{
		"code":    apperrors.GetCode(err),
		"message": apperrors.Message(err),
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	_ = c.Error(err)
	c.JSON(apperrors.GetHTTPCode(err), body)
}

// badRequest reports a request that failed binding
func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    apperrors.ErrCodeInvalidInput,
		"message": err.Error(),
	})
}

// resolveVideo maps the path a client sent to an existing video under the root
func resolveVideo(svc *services.Services, path string) (string, error) {
	video, err := svc.Catalog.Resolve(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(video); err != nil || info.IsDir() {
		return "", apperrors.NotFound("video", path)
	}
	return video, nil
}
