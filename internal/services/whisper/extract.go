package whisper

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// SampleSeconds is the clip length extracted per offset. Twenty seconds of
// speech is enough for stable language identification on the tiny model.
const SampleSeconds = 20

// Extractor extracts short audio clips suitable for the classifier.
type Extractor struct {
	ffmpeg string
	runner func(ctx context.Context, name string, args ...string) error
}

// NewExtractor creates an Extractor around the given ffmpeg binary.
func NewExtractor(ffmpeg string) *Extractor {
	if strings.TrimSpace(ffmpeg) == "" {
		ffmpeg = "ffmpeg"
	}
	return &Extractor{ffmpeg: ffmpeg}
}

// WithRunner sets a custom command runner (for testing).
func (e *Extractor) WithRunner(runner func(ctx context.Context, name string, args ...string) error) *Extractor {
	e.runner = runner
	return e
}

// ExtractSample extracts a mono 16kHz WAV clip of at most SampleSeconds from
// the audioIndex-th audio stream (0:a:N addressing) starting at startSec.
func (e *Extractor) ExtractSample(ctx context.Context, source string, audioIndex, startSec int, dest string) error {
	if audioIndex < 0 {
		return fmt.Errorf("extract sample: invalid audio stream index %d", audioIndex)
	}
	if startSec < 0 {
		startSec = 0
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%d", startSec),
		"-i", source,
		"-map", fmt.Sprintf("0:a:%d", audioIndex),
		"-t", fmt.Sprintf("%d", SampleSeconds),
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		dest,
	}
	if e.runner != nil {
		return e.runner(ctx, e.ffmpeg, args...)
	}
	cmd := exec.CommandContext(ctx, e.ffmpeg, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg extract 0:a:%d from %s: %w: %s", audioIndex, source, err, strings.TrimSpace(string(output)))
	}
	return nil
}
