package models

import (
	"strings"

	apperrors "github.com/sitelabel/annotator/internal/errors"
	"github.com/sitelabel/annotator/internal/timecode"
)

// SegmentInput carries the raw form fields for a new segment
type SegmentInput struct {
	Start       string   `json:"start" binding:"required"`
	End         string   `json:"end" binding:"required"`
	Description string   `json:"description"`
	Noun        string   `json:"noun"`
	Verb        string   `json:"verb"`
	Tags        []string `json:"tags"`
}

// NewSegment validates the input against the video duration. Both times are
// parsed first, then ordering is checked, then the upper bound.
func NewSegment(in SegmentInput, duration float64) (Segment, error) {
	start, err := timecode.Parse(in.Start)
	if err != nil {
		return Segment{}, withField(err, "start_time")
	}
	end, err := timecode.Parse(in.End)
	if err != nil {
		return Segment{}, withField(err, "end_time")
	}

	if start >= end {
		return Segment{}, apperrors.ValidationError("start_time", "start time must be before end time")
	}
	if end > duration {
		return Segment{}, apperrors.ValidationError("end_time",
			"end time exceeds video duration ("+timecode.Format(duration)+")")
	}

	return Segment{
		StartTime:   start,
		EndTime:     end,
		Description: strings.TrimSpace(in.Description),
		Noun:        strings.TrimSpace(in.Noun),
		Verb:        strings.TrimSpace(in.Verb),
		Tags:        CleanTags(in.Tags),
	}, nil
}

// SegmentPatch holds the editable fields of an existing segment; nil means unchanged
type SegmentPatch struct {
	Description *string  `json:"description"`
	Noun        *string  `json:"noun"`
	Verb        *string  `json:"verb"`
	Tags        []string `json:"tags"`
}

func (p SegmentPatch) apply(seg *Segment) {
	if p.Description != nil {
		seg.Description = strings.TrimSpace(*p.Description)
	}
	if p.Noun != nil {
		seg.Noun = strings.TrimSpace(*p.Noun)
	}
	if p.Verb != nil {
		seg.Verb = strings.TrimSpace(*p.Verb)
	}
	if p.Tags != nil {
		seg.Tags = CleanTags(p.Tags)
	}
}

// CleanTags trims tags and drops blanks and repeats, keeping first-seen order
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func withField(err error, field string) error {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.WithDetail("field", field)
	}
	return err
}
