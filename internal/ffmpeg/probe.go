package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ProbeResult contains video metadata from FFprobe
type ProbeResult struct {
	Format  Format   `json:"format"`
	Streams []Stream `json:"streams"`
}

// Format contains container format information
type Format struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

// Stream contains information about a media stream
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"` // video, audio, subtitle, data
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration,omitempty"`
	NbFrames     string `json:"nb_frames,omitempty"`
}

// VideoInfo is what the annotator needs to know about a video file
type VideoInfo struct {
	FrameCount int64   `json:"frame_count"`
	FrameRate  float64 `json:"frame_rate"`
	// Container duration, used when the stream carries no frame count
	FormatDuration float64 `json:"format_duration"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

// Duration is frame count over frame rate, falling back to the container
// duration, or 0 when neither is known.
func (v *VideoInfo) Duration() float64 {
	if v == nil {
		return 0
	}
	if v.FrameCount > 0 && v.FrameRate > 0 {
		return float64(v.FrameCount) / v.FrameRate
	}
	if v.FormatDuration > 0 {
		return v.FormatDuration
	}
	return 0
}

// Probe extracts metadata from a media file using FFprobe
func (e *Executor) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)

	e.logger.Debug("Executing FFprobe",
		zap.String("file", filePath),
	)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, NewProcessingError("probe", filePath, err, string(exitErr.Stderr))
		}
		return nil, NewProcessingError("probe", filePath, err, "")
	}

	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return nil, NewProcessingError("probe_parse", filePath, err, "")
	}

	return &result, nil
}

// VideoInfo probes a file and reduces the result to VideoInfo
func (e *Executor) VideoInfo(ctx context.Context, filePath string) (*VideoInfo, error) {
	probe, err := e.Probe(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return probe.VideoInfo()
}

// VideoInfo reads frame count and rate from the first video stream
func (p *ProbeResult) VideoInfo() (*VideoInfo, error) {
	info := &VideoInfo{}
	if d, err := p.GetDuration(); err == nil {
		info.FormatDuration = d
	}

	streams := p.GetVideoStreams()
	if len(streams) == 0 {
		if info.FormatDuration > 0 {
			return info, nil
		}
		return nil, fmt.Errorf("no video stream in %s", p.Format.Filename)
	}

	vs := streams[0]
	info.Width = vs.Width
	info.Height = vs.Height

	rate, err := ParseFrameRate(vs.RFrameRate)
	if err != nil || rate == 0 {
		rate, _ = ParseFrameRate(vs.AvgFrameRate)
	}
	info.FrameRate = rate

	if vs.NbFrames != "" {
		if n, err := strconv.ParseInt(vs.NbFrames, 10, 64); err == nil {
			info.FrameCount = n
		}
	}

	return info, nil
}

// GetDuration extracts the container duration in seconds
func (p *ProbeResult) GetDuration() (float64, error) {
	duration, err := strconv.ParseFloat(strings.TrimSpace(p.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// GetVideoStreams returns all video streams
func (p *ProbeResult) GetVideoStreams() []Stream {
	var videos []Stream
	for _, stream := range p.Streams {
		if stream.CodecType == "video" {
			videos = append(videos, stream)
		}
	}
	return videos
}

// ParseFrameRate parses ffprobe rates such as "25/1" or "30000/1001"
func ParseFrameRate(rate string) (float64, error) {
	rate = strings.TrimSpace(rate)
	num, den, found := strings.Cut(rate, "/")
	if !found {
		return strconv.ParseFloat(rate, 64)
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", rate, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q: %w", rate, err)
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}
