package services

import (
	"context"
	"os"

	apperrors "github.com/sitelabel/annotator/internal/errors"
	"go.uber.org/zap"
)

// FrameService renders preview frames for the dashboard
type FrameService struct {
	capturer FrameCapturer
	logger   *zap.Logger
}

func NewFrameService(capturer FrameCapturer, logger *zap.Logger) *FrameService {
	return &FrameService{
		capturer: capturer,
		logger:   logger,
	}
}

// Capture returns the JPEG frame of a video at the given second
func (s *FrameService) Capture(ctx context.Context, videoPath string, at float64) ([]byte, error) {
	if at < 0 {
		return nil, apperrors.ValidationError("t", "must not be negative")
	}

	tmp, err := os.CreateTemp("", "annotator-frame-*.jpg")
	if err != nil {
		return nil, apperrors.IOError("create", os.TempDir(), err)
	}
	output := tmp.Name()
	tmp.Close()
	defer os.Remove(output)

	if err := s.capturer.CaptureFrame(ctx, videoPath, output, at); err != nil {
		s.logger.Warn("Frame capture failed", zap.String("video", videoPath), zap.Float64("at", at), zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrCodeIO, "frame capture failed")
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return nil, apperrors.IOError("read", output, err)
	}
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeIO, "no frame at the requested time")
	}
	return data, nil
}
