package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"verilens/internal/config"
	"verilens/internal/domain"
	"verilens/internal/port"
)

// FFmpegExtractor implements port.FrameExtractor by shelling out to ffprobe
// for stream metadata and ffmpeg for frame sampling. Every temporary file it
// creates is removed on all exit paths.
type FFmpegExtractor struct {
	ffmpegPath  string
	ffprobePath string
	maxFrames   int
	timeout     time.Duration
}

// NewFFmpegExtractor creates an extractor from video config.
func NewFFmpegExtractor(cfg *config.VideoConfig) *FFmpegExtractor {
	ffmpeg := cfg.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	ffprobe := cfg.FFprobePath
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	maxFrames := cfg.MaxSampledFrames
	if maxFrames == 0 {
		maxFrames = 30
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &FFmpegExtractor{
		ffmpegPath:  ffmpeg,
		ffprobePath: ffprobe,
		maxFrames:   maxFrames,
		timeout:     timeout,
	}
}

// Extract materializes the stream to a temp file, probes its metadata, and
// samples every interval-th frame as JPEG.
func (e *FFmpegExtractor) Extract(ctx context.Context, videoBytes []byte, interval int) (*domain.VideoMetadata, []port.FrameSample, error) {
	if interval <= 0 {
		interval = 10
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	tmpFile, err := os.CreateTemp("", "verilens-video-*.mp4")
	if err != nil {
		return nil, nil, fmt.Errorf("creating temp video file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmpFile.Write(videoBytes); err != nil {
		_ = tmpFile.Close()
		return nil, nil, fmt.Errorf("writing temp video file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, nil, fmt.Errorf("closing temp video file: %w", err)
	}

	meta, err := e.probe(ctx, tmpPath)
	if err != nil {
		return nil, nil, err
	}

	frames, err := e.sampleFrames(ctx, tmpPath, interval)
	if err != nil {
		return nil, nil, err
	}
	return meta, frames, nil
}

// probeOutput models the subset of ffprobe JSON we consume.
type probeOutput struct {
	Streams []struct {
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		Duration     string `json:"duration"`
	} `json:"streams"`
}

func (e *FFmpegExtractor) probe(ctx context.Context, path string) (*domain.VideoMetadata, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,avg_frame_rate,nb_frames,duration",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe: %v", domain.ErrDecodeFailed, err)
	}

	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return nil, fmt.Errorf("decoding ffprobe output: %w", err)
	}
	if len(probed.Streams) == 0 {
		return nil, fmt.Errorf("%w: no video stream found", domain.ErrDecodeFailed)
	}

	stream := probed.Streams[0]
	fps := parseFrameRate(stream.AvgFrameRate)
	frameCount, _ := strconv.Atoi(stream.NbFrames)
	if frameCount == 0 && stream.Duration != "" {
		// Containers without an nb_frames field: estimate from duration.
		if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
			frameCount = int(d * fps)
		}
	}

	meta := &domain.VideoMetadata{
		FPS:        fps,
		FrameCount: frameCount,
		Width:      stream.Width,
		Height:     stream.Height,
	}
	if fps > 0 {
		meta.Duration = float64(frameCount) / fps
	}
	return meta, nil
}

// parseFrameRate parses ffprobe's "num/den" frame rate notation.
func parseFrameRate(s string) float64 {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) == 2 {
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 == nil && err2 == nil && den != 0 {
			return num / den
		}
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (e *FFmpegExtractor) sampleFrames(ctx context.Context, path string, interval int) ([]port.FrameSample, error) {
	frameDir, err := os.MkdirTemp("", "verilens-frames-")
	if err != nil {
		return nil, fmt.Errorf("creating frame dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(frameDir) }()

	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-i", path,
		"-vf", fmt.Sprintf(`select=not(mod(n\,%d))`, interval),
		"-vsync", "vfr",
		"-frames:v", strconv.Itoa(e.maxFrames),
		"-q:v", "2",
		filepath.Join(frameDir, "frame-%05d.jpg"),
	)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg frame extraction: %v", domain.ErrDecodeFailed, err)
	}

	paths, err := filepath.Glob(filepath.Join(frameDir, "frame-*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("listing frames: %w", err)
	}
	sort.Strings(paths)

	samples := make([]port.FrameSample, 0, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading frame %s: %w", p, err)
		}
		samples = append(samples, port.FrameSample{FrameNumber: i * interval, JPEG: data})
	}
	return samples, nil
}
