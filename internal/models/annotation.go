package models

import (
	"encoding/json"
	"path/filepath"

	apperrors "github.com/sitelabel/annotator/internal/errors"
)

// Annotation is the full annotation state of one video. Whether the video is
// annotated is derived from its segments and is never stored independently.
type Annotation struct {
	VideoPath string    `json:"video_path"`
	VideoName string    `json:"video_name"`
	Duration  float64   `json:"duration"`
	Segments  []Segment `json:"segments"`
	Annotator string    `json:"annotator"`
	Timestamp string    `json:"timestamp"`
	Status    Status    `json:"status"`
}

// NewAnnotation returns the default record for a video with no backing file
func NewAnnotation(videoPath string, duration float64, annotator string) *Annotation {
	return &Annotation{
		VideoPath: videoPath,
		VideoName: filepath.Base(videoPath),
		Duration:  duration,
		Segments:  []Segment{},
		Annotator: annotator,
		Status:    StatusUnannotated,
	}
}

// Annotated reports whether the record has at least one segment
func (a *Annotation) Annotated() bool {
	return len(a.Segments) > 0
}

// wireAnnotation fixes the on-disk key order, including the derived flag
type wireAnnotation struct {
	VideoPath string    `json:"video_path"`
	VideoName string    `json:"video_name"`
	Duration  float64   `json:"duration"`
	Segments  []Segment `json:"segments"`
	Annotated bool      `json:"annotated"`
	Annotator string    `json:"annotator"`
	Timestamp string    `json:"timestamp"`
	Status    Status    `json:"status"`
}

// MarshalJSON writes the record with "annotated" recomputed from the segments
func (a Annotation) MarshalJSON() ([]byte, error) {
	segments := a.Segments
	if segments == nil {
		segments = []Segment{}
	}
	return marshalRaw(wireAnnotation{
		VideoPath: a.VideoPath,
		VideoName: a.VideoName,
		Duration:  a.Duration,
		Segments:  segments,
		Annotated: len(segments) > 0,
		Annotator: a.Annotator,
		Timestamp: a.Timestamp,
		Status:    a.Status,
	})
}

// UnmarshalJSON reads current and legacy files. A stored "annotated" value is
// ignored; missing or unknown status becomes StatusUnannotated; segments
// without noun, verb or tags get empty values.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var w wireAnnotation
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*a = Annotation{
		VideoPath: w.VideoPath,
		VideoName: w.VideoName,
		Duration:  w.Duration,
		Segments:  w.Segments,
		Annotator: w.Annotator,
		Timestamp: w.Timestamp,
		Status:    w.Status,
	}
	if a.Segments == nil {
		a.Segments = []Segment{}
	}
	for i := range a.Segments {
		if a.Segments[i].Tags == nil {
			a.Segments[i].Tags = []string{}
		}
	}
	if !a.Status.Valid() {
		if parsed, ok := ParseStatus(string(a.Status)); ok {
			a.Status = parsed
		} else {
			a.Status = StatusUnannotated
		}
	}
	return nil
}

// Clone returns a deep copy
func (a *Annotation) Clone() *Annotation {
	c := *a
	c.Segments = make([]Segment, len(a.Segments))
	for i, seg := range a.Segments {
		seg.Tags = append([]string{}, seg.Tags...)
		c.Segments[i] = seg
	}
	return &c
}

// AddSegment appends a segment, keeping creation order
func (a *Annotation) AddSegment(seg Segment) {
	a.Segments = append(a.Segments, seg)
}

// DeleteSegment removes the segment at index
func (a *Annotation) DeleteSegment(index int) error {
	if index < 0 || index >= len(a.Segments) {
		return apperrors.NotFound("segment", index)
	}
	a.Segments = append(a.Segments[:index], a.Segments[index+1:]...)
	return nil
}

// DeleteLastSegment removes the most recently created segment
func (a *Annotation) DeleteLastSegment() error {
	return a.DeleteSegment(len(a.Segments) - 1)
}

// UpdateSegment replaces the text fields of the segment at index in place
func (a *Annotation) UpdateSegment(index int, patch SegmentPatch) error {
	if index < 0 || index >= len(a.Segments) {
		return apperrors.NotFound("segment", index)
	}
	patch.apply(&a.Segments[index])
	return nil
}

// PromoteStatus moves an unannotated record with segments to StatusAnnotated.
// It reports whether the status changed.
func (a *Annotation) PromoteStatus() bool {
	if a.Annotated() && a.Status == StatusUnannotated {
		a.Status = StatusAnnotated
		return true
	}
	return false
}

// TransitionTo applies an explicit status change. StatusNotNeeded can be
// entered from anywhere and left only towards StatusUnannotated.
func (a *Annotation) TransitionTo(next Status) error {
	if !next.Valid() {
		return apperrors.ValidationError("status", "unknown status "+string(next))
	}
	if a.Status == StatusNotNeeded && next == StatusAnnotated {
		return apperrors.ValidationError("status", "a not-needed video must be reset to unannotated first")
	}
	a.Status = next
	return nil
}
