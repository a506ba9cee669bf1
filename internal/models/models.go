package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// TimestampLayout is the ISO-8601 form written into annotation and export files
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Now returns the current time in TimestampLayout
func Now() string {
	return time.Now().Format(TimestampLayout)
}

// Status is the per-video triage state, independent of whether segments exist
type Status string

const (
	StatusUnannotated Status = "未标注"
	StatusAnnotated   Status = "已标注"
	StatusNotNeeded   Status = "非必要"
)

// Statuses lists every status in display order
var Statuses = []Status{StatusUnannotated, StatusAnnotated, StatusNotNeeded}

// ParseStatus accepts the stored value or its English alias
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(StatusUnannotated), "unannotated":
		return StatusUnannotated, true
	case string(StatusAnnotated), "annotated":
		return StatusAnnotated, true
	case string(StatusNotNeeded), "not-needed", "not_needed", "skip":
		return StatusNotNeeded, true
	}
	return "", false
}

// Valid reports whether s is one of the three known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusUnannotated, StatusAnnotated, StatusNotNeeded:
		return true
	}
	return false
}

// Segment represents one annotated interval of a video
type Segment struct {
	StartTime   float64  `json:"start_time"`
	EndTime     float64  `json:"end_time"`
	Description string   `json:"description"`
	Noun        string   `json:"noun"`
	Verb        string   `json:"verb"`
	Tags        []string `json:"tags"`
}

// MarshalJSON writes an empty tag list instead of null
func (s Segment) MarshalJSON() ([]byte, error) {
	type plain Segment
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return marshalRaw(plain(s))
}

// marshalRaw is json.Marshal without HTML escaping, so free text is stored as typed
func marshalRaw(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ExportBundle is the consolidated snapshot of every non-empty annotation
type ExportBundle struct {
	TotalVideos int           `json:"total_videos"`
	ExportTime  string        `json:"export_time"`
	Annotations []*Annotation `json:"annotations"`
}

// VideoEntry is one row of the catalog as shown to a frontend
type VideoEntry struct {
	Index       int    `json:"index"`
	Path        string `json:"path"`
	RelPath     string `json:"rel_path"`
	DisplayName string `json:"display_name"`
	Status      Status `json:"status"`
	Segments    int    `json:"segments"`
}

// Subfolder is an immediate child directory of the video root
type Subfolder struct {
	Path        string `json:"path"`
	DisplayName string `json:"display_name"`
	VideoCount  int    `json:"video_count"`
}

// StatusCounts maps every status to the number of videos in it
type StatusCounts map[Status]int

// Total sums all counts
func (c StatusCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Progress summarises how far annotation of the current scope has come
type Progress struct {
	Total     int          `json:"total"`
	Annotated int          `json:"annotated"`
	Ratio     float64      `json:"ratio"`
	Counts    StatusCounts `json:"counts"`
}

// FootageReport estimates how much footage sits under the video root, assuming
// every clip has the same length
type FootageReport struct {
	Root         string           `json:"root"`
	TotalVideos  int              `json:"total_videos"`
	ClipSeconds  float64          `json:"clip_seconds"`
	TotalSeconds float64          `json:"total_seconds"`
	Estimates    []ReviewEstimate `json:"estimates"`
	Folders      []FolderFootage  `json:"folders"`
	Videos       []string         `json:"videos"`
}

// ReviewEstimate is the annotation time at Factor times playback speed
type ReviewEstimate struct {
	Factor  float64 `json:"factor"`
	Seconds float64 `json:"seconds"`
}

// FolderFootage is the footage of one top-level folder
type FolderFootage struct {
	Name    string  `json:"name"`
	Videos  int     `json:"videos"`
	Seconds float64 `json:"seconds"`
}

// ExportResult describes a finished export
type ExportResult struct {
	Path        string   `json:"path"`
	TotalVideos int      `json:"total_videos"`
	ExportTime  string   `json:"export_time"`
	Skipped     []string `json:"skipped"`
}
