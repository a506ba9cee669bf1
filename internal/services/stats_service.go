package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sitelabel/annotator/internal/catalog"
	"github.com/sitelabel/annotator/internal/models"
	"github.com/sitelabel/annotator/internal/storage"
	"github.com/sitelabel/annotator/internal/timecode"
	"go.uber.org/zap"
)

// RootFolder names the group of videos that sit directly in the video root
const RootFolder = "(root)"

// StatsService estimates footage volume and review effort
type StatsService struct {
	storage       *storage.Manager
	catalog       *catalog.Catalog
	clipSeconds   float64
	reviewFactors []float64
	logger        *zap.Logger
}

func NewStatsService(storage *storage.Manager, videos *catalog.Catalog, clipSeconds float64, reviewFactors []float64, logger *zap.Logger) *StatsService {
	return &StatsService{
		storage:       storage,
		catalog:       videos,
		clipSeconds:   clipSeconds,
		reviewFactors: reviewFactors,
		logger:        logger,
	}
}

// Footage counts every video under the root, not just the current scope, and
// treats each one as a clip of the configured length
func (s *StatsService) Footage() *models.FootageReport {
	start := time.Now()
	videos := s.catalog.Scan(s.catalog.Root())

	report := &models.FootageReport{
		Root:         s.catalog.Root(),
		TotalVideos:  len(videos),
		ClipSeconds:  s.clipSeconds,
		TotalSeconds: float64(len(videos)) * s.clipSeconds,
		Estimates:    make([]models.ReviewEstimate, 0, len(s.reviewFactors)),
		Folders:      make([]models.FolderFootage, 0),
		Videos:       make([]string, 0, len(videos)),
	}

	for _, factor := range s.reviewFactors {
		report.Estimates = append(report.Estimates, models.ReviewEstimate{
			Factor:  factor,
			Seconds: report.TotalSeconds * factor,
		})
	}

	perFolder := make(map[string]int)
	for _, video := range videos {
		rel := s.catalog.Rel(video)
		report.Videos = append(report.Videos, rel)

		folder := RootFolder
		if i := strings.Index(rel, "/"); i >= 0 {
			folder = rel[:i]
		}
		perFolder[folder]++
	}

	for name, count := range perFolder {
		report.Folders = append(report.Folders, models.FolderFootage{
			Name:    name,
			Videos:  count,
			Seconds: float64(count) * s.clipSeconds,
		})
	}
	sort.Slice(report.Folders, func(i, j int) bool {
		return report.Folders[i].Name < report.Folders[j].Name
	})

	s.logger.Info("Counted footage",
		zap.Int("videos", report.TotalVideos),
		zap.String("total", timecode.Human(report.TotalSeconds)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report
}

// WriteVideoList saves the numbered list of videos in a report
func (s *StatsService) WriteVideoList(path string, report *models.FootageReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Video list - generated %s\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(strings.Repeat("=", 80) + "\n\n")
	for i, rel := range report.Videos {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rel)
		fmt.Fprintf(&b, "   duration: %ss\n\n", formatSeconds(report.ClipSeconds))
	}

	if err := s.storage.WriteFile(path, []byte(b.String())); err != nil {
		return err
	}
	s.logger.Info("Saved video list", zap.String("path", path), zap.Int("videos", len(report.Videos)))
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
