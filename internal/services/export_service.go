package services

import (
	"context"
	"errors"
	"os"

	"github.com/sitelabel/annotator/internal/catalog"
	"github.com/sitelabel/annotator/internal/models"
	"github.com/sitelabel/annotator/internal/storage"
	"go.uber.org/zap"
)

type ExportService struct {
	storage *storage.Manager
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func NewExportService(storage *storage.Manager, videos *catalog.Catalog, logger *zap.Logger) *ExportService {
	return &ExportService{
		storage: storage,
		catalog: videos,
		logger:  logger,
	}
}

// Collect gathers every record in scope that has at least one segment, in
// catalog order. Unreadable records are skipped and reported.
func (s *ExportService) Collect(ctx context.Context) ([]*models.Annotation, []string, error) {
	annotations := make([]*models.Annotation, 0)
	skipped := make([]string, 0)

	for _, video := range s.catalog.Videos() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		a, err := s.storage.GetAnnotation(video)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			s.logger.Warn("Skipping annotation in export", zap.String("video", video), zap.Error(err))
			skipped = append(skipped, video)
			continue
		}

		if !a.Annotated() {
			continue
		}
		annotations = append(annotations, a)
	}

	return annotations, skipped, nil
}

// ExportAll writes the bundle of all non-empty records in scope to the export
// path. Running it twice over unchanged records yields the same bundle apart
// from export_time.
func (s *ExportService) ExportAll(ctx context.Context) (*models.ExportResult, error) {
	annotations, skipped, err := s.Collect(ctx)
	if err != nil {
		return nil, err
	}

	bundle := &models.ExportBundle{
		TotalVideos: len(annotations),
		ExportTime:  models.Now(),
		Annotations: annotations,
	}

	if err := s.storage.SaveExport(bundle); err != nil {
		s.logger.Error("Failed to write export", zap.String("path", s.storage.ExportPath()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Exported annotations",
		zap.String("path", s.storage.ExportPath()),
		zap.Int("videos", bundle.TotalVideos),
		zap.Int("skipped", len(skipped)),
	)

	return &models.ExportResult{
		Path:        s.storage.ExportPath(),
		TotalVideos: bundle.TotalVideos,
		ExportTime:  bundle.ExportTime,
		Skipped:     skipped,
	}, nil
}
