package ffmpeg

import (
	"fmt"
	"strings"
)

// ProcessingError represents a failed ffmpeg or ffprobe run
type ProcessingError struct {
	Operation string // e.g. "probe", "frame_capture"
	File      string
	Err       error
	Stderr    string
}

func (e *ProcessingError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("ffmpeg %s failed for %s: %v (stderr: %s)", e.Operation, e.File, e.Err, e.Stderr)
	}
	return fmt.Sprintf("ffmpeg %s failed for %s: %v", e.Operation, e.File, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewProcessingError creates a new ProcessingError
func NewProcessingError(operation, file string, err error, stderr string) *ProcessingError {
	return &ProcessingError{
		Operation: operation,
		File:      file,
		Err:       err,
		Stderr:    stderr,
	}
}

// ParseFFmpegError extracts error message from FFmpeg stderr output
func ParseFFmpegError(stderr string) string {
	lines := strings.Split(stderr, "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])

		if strings.Contains(line, "error") ||
			strings.Contains(line, "Error") ||
			strings.Contains(line, "Invalid") ||
			strings.Contains(line, "failed") ||
			strings.Contains(line, "No such") {
			return line
		}
	}

	// If no specific error found, return last non-empty line
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line != "" {
			return line
		}
	}

	return "Unknown FFmpeg error"
}
