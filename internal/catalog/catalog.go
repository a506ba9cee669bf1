// Package catalog enumerates the footage under the video root and tracks
// which subfolder the current session is confined to.
package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/sitelabel/annotator/internal/errors"
	"go.uber.org/zap"
)

// Catalog holds the sorted video list of the current scope. It is safe for
// concurrent use.
type Catalog struct {
	root   string
	ext    string
	logger *zap.Logger

	mu     sync.RWMutex
	scope  string
	videos []string
}

// New creates a catalog over root and scans it. A relative root is made
// absolute so that absolute video paths resolve against it.
func New(root, ext string, logger *zap.Logger) *Catalog {
	if ext == "" {
		ext = ".mp4"
	}
	c := &Catalog{
		root:   absPath(root),
		ext:    ext,
		logger: logger,
	}
	c.Refresh()
	return c
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Root returns the video root directory
func (c *Catalog) Root() string {
	return c.root
}

// Scope returns the selected subfolder, or "" when the whole root is in scope
func (c *Catalog) Scope() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scope
}

// Refresh rescans the current scope
func (c *Catalog) Refresh() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rescan()
	return append([]string(nil), c.videos...)
}

// rescan must be called with mu held
func (c *Catalog) rescan() {
	dir := c.root
	if c.scope != "" {
		dir = c.scope
	}
	c.videos = c.Scan(dir)
}

// UseSubfolder confines the session to one subfolder of the root
func (c *Catalog) UseSubfolder(subfolder string) error {
	dir, err := c.Resolve(subfolder)
	if err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return apperrors.NotFound("subfolder", subfolder)
	}
	if dir == c.root {
		c.UseRoot()
		return nil
	}

	c.mu.Lock()
	c.scope = dir
	c.rescan()
	count := len(c.videos)
	c.mu.Unlock()

	c.logger.Info("Switched subfolder",
		zap.String("subfolder", c.SubfolderDisplayName(dir)),
		zap.Int("videos", count),
	)
	return nil
}

// UseRoot widens the scope back to the whole root
func (c *Catalog) UseRoot() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scope = ""
	c.rescan()
}

// Videos returns a copy of the video list in scope
func (c *Catalog) Videos() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.videos...)
}

// Len returns the number of videos in scope
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.videos)
}

// At returns the video at index within the scope
func (c *Catalog) At(index int) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.videos) {
		return "", false
	}
	return c.videos[index], true
}

// IndexOf returns the position of a video in scope, or -1
func (c *Catalog) IndexOf(videoPath string) int {
	videoPath = absPath(videoPath)
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := sort.SearchStrings(c.videos, videoPath)
	if i < len(c.videos) && c.videos[i] == videoPath {
		return i
	}
	return -1
}

// Scan recursively lists every file under dir with the catalog extension,
// sorted. A missing dir yields an empty list.
func (c *Catalog) Scan(dir string) []string {
	videos := make([]string, 0)

	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to stat video directory", zap.String("dir", dir), zap.Error(err))
		}
		return videos
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Warn("Skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && filepath.Ext(d.Name()) == c.ext {
			videos = append(videos, path)
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("Video scan incomplete", zap.String("dir", dir), zap.Error(err))
	}

	sort.Strings(videos)
	return videos
}

// ListSubfolders returns the immediate child directories of the root, sorted
func (c *Catalog) ListSubfolders() []string {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read video root", zap.String("root", c.root), zap.Error(err))
		}
		return []string{}
	}

	subfolders := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			subfolders = append(subfolders, filepath.Join(c.root, entry.Name()))
		}
	}
	sort.Strings(subfolders)
	return subfolders
}

// ScanWithin lists the videos of one subfolder without changing the scope
func (c *Catalog) ScanWithin(subfolder string) ([]string, error) {
	dir, err := c.Resolve(subfolder)
	if err != nil {
		return nil, err
	}
	return c.Scan(dir), nil
}

// VideoCountIn counts the videos under a subfolder
func (c *Catalog) VideoCountIn(subfolder string) int {
	videos, err := c.ScanWithin(subfolder)
	if err != nil {
		return 0
	}
	return len(videos)
}

// DisplayName returns "parent/stem" for videos below a subfolder and just the
// stem for videos directly in the root
func (c *Catalog) DisplayName(videoPath string) string {
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	parent := filepath.Dir(filepath.Clean(videoPath))

	if parent != c.root && parent != "." && parent != string(filepath.Separator) {
		return filepath.Base(parent) + "/" + stem
	}
	return stem
}

// SubfolderDisplayName returns the folder name of a subfolder
func (c *Catalog) SubfolderDisplayName(subfolder string) string {
	return filepath.Base(subfolder)
}

// Rel returns a path relative to the root using forward slashes
func (c *Catalog) Rel(path string) string {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// Resolve maps a path given relative to the root (or absolute) to an absolute
// path, rejecting anything outside the root.
func (c *Catalog) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", apperrors.InvalidInput("path is required")
	}

	p := filepath.FromSlash(path)
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.root, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(c.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperrors.InvalidInput("path %s is outside the video root", path)
	}
	return p, nil
}
