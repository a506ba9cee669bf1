package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	apperrors "github.com/sitelabel/annotator/internal/errors"
	"github.com/sitelabel/annotator/internal/models"
	"go.uber.org/zap"
)

// Manager handles file storage operations
type Manager struct {
	videoDir       string
	annotationDir  string
	exportPath     string
	vocabularyPath string
	logger         *zap.Logger
}

// NewManager creates a new storage manager. Relative paths are made absolute.
func NewManager(videoDir, annotationDir, exportPath, vocabularyPath string, logger *zap.Logger) *Manager {
	return &Manager{
		videoDir:       absPath(videoDir),
		annotationDir:  absPath(annotationDir),
		exportPath:     absPath(exportPath),
		vocabularyPath: absPath(vocabularyPath),
		logger:         logger,
	}
}

func absPath(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Initialize creates the annotation directory
func (m *Manager) Initialize() error {
	if err := os.MkdirAll(m.annotationDir, 0755); err != nil {
		return apperrors.IOError("mkdir", m.annotationDir, err)
	}
	m.logger.Debug("Annotation directory ready", zap.String("path", m.annotationDir))
	return nil
}

// VideoDir returns the video root
func (m *Manager) VideoDir() string {
	return m.videoDir
}

// AnnotationDir returns the annotation root
func (m *Manager) AnnotationDir() string {
	return m.annotationDir
}

// ExportPath returns the export bundle path
func (m *Manager) ExportPath() string {
	return m.exportPath
}

// VocabularyPath returns the vocabulary sidecar path
func (m *Manager) VocabularyPath() string {
	return m.vocabularyPath
}

// GetAnnotationPath maps a video to its annotation file: same path relative to
// the video root, under the annotation root, with a .json extension. It does
// not touch the file system.
func (m *Manager) GetAnnotationPath(videoPath string) (string, error) {
	rel, err := filepath.Rel(m.videoDir, absPath(videoPath))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperrors.InvalidInput("video %s is outside %s", videoPath, m.videoDir)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".json"
	return filepath.Join(m.annotationDir, rel), nil
}

// AnnotationExists reports whether a video has a backing annotation file
func (m *Manager) AnnotationExists(videoPath string) bool {
	path, err := m.GetAnnotationPath(videoPath)
	if err != nil {
		return false
	}
	return m.FileExists(path)
}

// GetAnnotation loads the annotation file of a video. A missing file is an
// IO error wrapping os.ErrNotExist.
func (m *Manager) GetAnnotation(videoPath string) (*models.Annotation, error) {
	path, err := m.GetAnnotationPath(videoPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.IOError("read", path, err)
	}

	var annotation models.Annotation
	if err := json.Unmarshal(data, &annotation); err != nil {
		return nil, apperrors.SerializationError(path, err)
	}

	return &annotation, nil
}

// SaveAnnotation writes the annotation file of a video, creating parent
// directories first
func (m *Manager) SaveAnnotation(videoPath string, annotation *models.Annotation) error {
	path, err := m.GetAnnotationPath(videoPath)
	if err != nil {
		return err
	}
	return m.writeJSON(path, annotation)
}

// SaveExport writes the export bundle
func (m *Manager) SaveExport(bundle *models.ExportBundle) error {
	return m.writeJSON(m.exportPath, bundle)
}

// GetExport reads the last export bundle
func (m *Manager) GetExport() (*models.ExportBundle, error) {
	data, err := os.ReadFile(m.exportPath)
	if err != nil {
		return nil, apperrors.IOError("read", m.exportPath, err)
	}

	var bundle models.ExportBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, apperrors.SerializationError(m.exportPath, err)
	}
	return &bundle, nil
}

// ReadVocabulary returns the raw sidecar contents
func (m *Manager) ReadVocabulary() ([]byte, error) {
	data, err := os.ReadFile(m.vocabularyPath)
	if err != nil {
		return nil, apperrors.IOError("read", m.vocabularyPath, err)
	}
	return data, nil
}

// WriteVocabulary replaces the sidecar contents
func (m *Manager) WriteVocabulary(data []byte) error {
	return m.WriteFile(m.vocabularyPath, data)
}

// FileExists checks if a file exists
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// writeJSON encodes v with two-space indentation, leaving non-ASCII and HTML
// characters as they are
func (m *Manager) writeJSON(path string, v interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return apperrors.SerializationError(path, err)
	}
	return m.WriteFile(path, buf.Bytes())
}

// WriteFile replaces path atomically: the data goes to a temp file in the same
// directory, which is then renamed over the target. Readers see either the old
// or the new content, never a truncated file.
func (m *Manager) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.IOError("mkdir", dir, err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.New().String()))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return apperrors.IOError("write", path, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return apperrors.IOError("rename", path, err)
	}

	m.logger.Debug("Wrote file", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
