package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single ffmpeg/ffprobe invocation
const DefaultTimeout = 30 * time.Second

// Executor runs the ffmpeg and ffprobe binaries
type Executor struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	logger      *zap.Logger
}

// NewExecutor creates a new FFmpeg executor
func NewExecutor(ffmpegPath, ffprobePath string, timeout time.Duration, logger *zap.Logger) *Executor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Executor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
		logger:      logger,
	}
}

// Execute runs FFmpeg with the given arguments. operation and file label the
// returned ProcessingError.
func (e *Executor) Execute(ctx context.Context, operation, file string, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)

	e.logger.Debug("Executing FFmpeg",
		zap.String("command", cmd.String()),
	)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		errorMsg := ParseFFmpegError(stderrBuf.String())

		e.logger.Error("FFmpeg execution failed",
			zap.Error(err),
			zap.String("stderr", errorMsg),
		)

		return NewProcessingError(operation, file, err, errorMsg)
	}

	return nil
}

// CaptureFrame writes the frame at timestamp (seconds) as a JPEG image
func (e *Executor) CaptureFrame(ctx context.Context, input, output string, timestamp float64) error {
	args := []string{
		"-hide_banner",
		"-ss", fmt.Sprintf("%.3f", timestamp),
		"-i", input,
		"-vframes", "1",
		"-q:v", "2",
		"-y",
		output,
	}

	return e.Execute(ctx, "frame_capture", input, args)
}

// GetFFmpegPath returns the FFmpeg binary path
func (e *Executor) GetFFmpegPath() string {
	return e.ffmpegPath
}

// GetFFprobePath returns the FFprobe binary path
func (e *Executor) GetFFprobePath() string {
	return e.ffprobePath
}
