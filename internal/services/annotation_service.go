package services

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/sitelabel/annotator/internal/catalog"
	apperrors "github.com/sitelabel/annotator/internal/errors"
	"github.com/sitelabel/annotator/internal/models"
	"github.com/sitelabel/annotator/internal/storage"
	"go.uber.org/zap"
)

// AnnotationService loads, edits and saves the annotation record of each video.
// One mutex covers every load-modify-save so concurrent edits of a record are
// applied one after another.
type AnnotationService struct {
	mu sync.Mutex

	storage   *storage.Manager
	catalog   *catalog.Catalog
	prober    Prober
	annotator string
	logger    *zap.Logger
}

func NewAnnotationService(storage *storage.Manager, videos *catalog.Catalog, prober Prober, annotator string, logger *zap.Logger) *AnnotationService {
	return &AnnotationService{
		storage:   storage,
		catalog:   videos,
		prober:    prober,
		annotator: annotator,
		logger:    logger,
	}
}

// Load returns the record of a video. It never fails: a missing or corrupt
// file yields a fresh record whose duration comes from probing the video.
func (s *AnnotationService) Load(ctx context.Context, videoPath string) *models.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, videoPath)
}

func (s *AnnotationService) load(ctx context.Context, videoPath string) *models.Annotation {
	if a, ok := s.stored(videoPath); ok {
		return a
	}
	return models.NewAnnotation(videoPath, s.probeDuration(ctx, videoPath), s.annotator)
}

// Open is Load for display: a record that has segments but is still
// unannotated is promoted and saved before it is returned.
func (s *AnnotationService) Open(ctx context.Context, videoPath string) *models.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.load(ctx, videoPath)
	s.promote(videoPath, a)
	return a
}

// Save stamps the record with the current time and writes it. On failure the
// record is left untouched.
func (s *AnnotationService) Save(videoPath string, a *models.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(videoPath, a)
}

func (s *AnnotationService) save(videoPath string, a *models.Annotation) error {
	stamped := a.Clone()
	stamped.Timestamp = models.Now()

	if err := s.storage.SaveAnnotation(videoPath, stamped); err != nil {
		s.logger.Error("Failed to save annotation", zap.String("video", videoPath), zap.Error(err))
		return err
	}

	a.Timestamp = stamped.Timestamp
	return nil
}

// AddSegment validates a new segment against the video duration, appends it
// and saves the record
func (s *AnnotationService) AddSegment(ctx context.Context, videoPath string, in models.SegmentInput) (*models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.load(ctx, videoPath)
	if a.Duration <= 0 {
		a.Duration = s.probeDuration(ctx, videoPath)
	}

	seg, err := models.NewSegment(in, a.Duration)
	if err != nil {
		return nil, err
	}

	updated, err := s.update(videoPath, a, func(a *models.Annotation) error {
		a.AddSegment(seg)
		a.PromoteStatus()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Added segment",
		zap.String("video", videoPath),
		zap.Float64("start", seg.StartTime),
		zap.Float64("end", seg.EndTime),
		zap.Int("segments", len(updated.Segments)),
	)
	return updated, nil
}

// DeleteSegment removes the segment at index
func (s *AnnotationService) DeleteSegment(ctx context.Context, videoPath string, index int) (*models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(videoPath, s.load(ctx, videoPath), func(a *models.Annotation) error {
		return a.DeleteSegment(index)
	})
}

// DeleteLastSegment removes the most recently added segment
func (s *AnnotationService) DeleteLastSegment(ctx context.Context, videoPath string) (*models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(videoPath, s.load(ctx, videoPath), func(a *models.Annotation) error {
		return a.DeleteLastSegment()
	})
}

// UpdateSegment edits the text fields of the segment at index
func (s *AnnotationService) UpdateSegment(ctx context.Context, videoPath string, index int, patch models.SegmentPatch) (*models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(videoPath, s.load(ctx, videoPath), func(a *models.Annotation) error {
		return a.UpdateSegment(index, patch)
	})
}

// SetStatus applies an explicit status change
func (s *AnnotationService) SetStatus(ctx context.Context, videoPath string, status models.Status) (*models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.update(videoPath, s.load(ctx, videoPath), func(a *models.Annotation) error {
		return a.TransitionTo(status)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Set status", zap.String("video", videoPath), zap.String("status", string(status)))
	return updated, nil
}

// Status returns the status of a video, applying lazy promotion
func (s *AnnotationService) Status(videoPath string) models.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peek(videoPath).Status
}

// StatusCounts tallies every video in scope by status. The counts always sum
// to the number of videos in scope.
func (s *AnnotationService) StatusCounts() models.StatusCounts {
	return s.Progress().Counts
}

// Progress reports how many videos in scope have segments
func (s *AnnotationService) Progress() models.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := models.StatusCounts{}
	for _, st := range models.Statuses {
		counts[st] = 0
	}

	videos := s.catalog.Videos()
	annotated := 0
	for _, video := range videos {
		a := s.peek(video)
		counts[a.Status]++
		if a.Annotated() {
			annotated++
		}
	}

	progress := models.Progress{
		Total:     len(videos),
		Annotated: annotated,
		Counts:    counts,
	}
	if progress.Total > 0 {
		progress.Ratio = float64(annotated) / float64(progress.Total)
	}
	return progress
}

// Entries lists the videos in scope with their status
func (s *AnnotationService) Entries() []models.VideoEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	videos := s.catalog.Videos()
	entries := make([]models.VideoEntry, 0, len(videos))
	for i, video := range videos {
		entries = append(entries, s.entry(i, video))
	}
	return entries
}

// NextUnannotated returns the first video after index from whose status is
// unannotated. Pass -1 to search from the start.
func (s *AnnotationService) NextUnannotated(from int) (models.VideoEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	videos := s.catalog.Videos()
	if from < -1 {
		from = -1
	}
	for i := from + 1; i < len(videos); i++ {
		if s.peek(videos[i]).Status == models.StatusUnannotated {
			return s.entry(i, videos[i]), true
		}
	}
	return models.VideoEntry{}, false
}

func (s *AnnotationService) entry(index int, video string) models.VideoEntry {
	a := s.peek(video)
	return models.VideoEntry{
		Index:       index,
		Path:        video,
		RelPath:     s.catalog.Rel(video),
		DisplayName: s.catalog.DisplayName(video),
		Status:      a.Status,
		Segments:    len(a.Segments),
	}
}

// update applies fn to a copy of a and saves it. Nothing changes when fn or
// the save fails. Callers hold mu.
func (s *AnnotationService) update(videoPath string, a *models.Annotation, fn func(*models.Annotation) error) (*models.Annotation, error) {
	updated := a.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	if err := s.save(videoPath, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// stored reads the backing file, logging anything other than its absence
func (s *AnnotationService) stored(videoPath string) (*models.Annotation, bool) {
	a, err := s.storage.GetAnnotation(videoPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to load annotation, using defaults",
				zap.String("video", videoPath),
				zap.String("code", string(apperrors.GetCode(err))),
				zap.Error(err),
			)
		}
		return nil, false
	}
	return a, true
}

// peek loads without probing, for listings over the whole scope
func (s *AnnotationService) peek(videoPath string) *models.Annotation {
	a, ok := s.stored(videoPath)
	if !ok {
		return models.NewAnnotation(videoPath, 0, s.annotator)
	}
	s.promote(videoPath, a)
	return a
}

func (s *AnnotationService) promote(videoPath string, a *models.Annotation) {
	if !a.PromoteStatus() {
		return
	}
	if err := s.save(videoPath, a); err != nil {
		s.logger.Warn("Failed to persist promoted status", zap.String("video", videoPath), zap.Error(err))
		return
	}
	s.logger.Debug("Promoted status", zap.String("video", videoPath))
}

func (s *AnnotationService) probeDuration(ctx context.Context, videoPath string) float64 {
	if s.prober == nil {
		return 0
	}
	info, err := s.prober.VideoInfo(ctx, videoPath)
	if err != nil {
		s.logger.Warn("Failed to probe video duration", zap.String("video", videoPath), zap.Error(err))
		return 0
	}
	return info.Duration()
}
