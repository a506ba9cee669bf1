package services

import (
	"context"

	"github.com/sitelabel/annotator/internal/catalog"
	"github.com/sitelabel/annotator/internal/config"
	"github.com/sitelabel/annotator/internal/ffmpeg"
	"github.com/sitelabel/annotator/internal/storage"
	"go.uber.org/zap"
)

// Prober reads video metadata. *ffmpeg.Executor implements it.
type Prober interface {
	VideoInfo(ctx context.Context, path string) (*ffmpeg.VideoInfo, error)
}

// FrameCapturer renders a single frame to an image file. *ffmpeg.Executor
// implements it.
type FrameCapturer interface {
	CaptureFrame(ctx context.Context, input, output string, timestamp float64) error
}

// Services holds all application services
type Services struct {
	Annotation *AnnotationService
	Export     *ExportService
	Vocabulary *VocabularyService
	Stats      *StatsService
	Frame      *FrameService
	Catalog    *catalog.Catalog
	Storage    *storage.Manager
	Logger     *zap.Logger
}

// NewServices creates a new services instance
func NewServices(storageManager *storage.Manager, videos *catalog.Catalog, executor *ffmpeg.Executor, cfg *config.Config, logger *zap.Logger) *Services {
	annotationService := NewAnnotationService(storageManager, videos, executor, cfg.Annotation.Annotator, logger)
	return &Services{
		Annotation: annotationService,
		Export:     NewExportService(storageManager, videos, logger),
		Vocabulary: NewVocabularyService(storageManager, cfg.Annotation.DefaultNouns, cfg.Annotation.DefaultVerbs, logger),
		Stats:      NewStatsService(storageManager, videos, cfg.Stats.ClipSeconds, cfg.Stats.ReviewFactors, logger),
		Frame:      NewFrameService(executor, logger),
		Catalog:    videos,
		Storage:    storageManager,
		Logger:     logger,
	}
}
