package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"langmux/internal/fileutil"
	"langmux/internal/services"
)

// Tag assigns one metadata key to a stream selector, e.g.
// {Selector: "s:a:0", Key: "language", Value: "eng"}.
type Tag struct {
	Selector string
	Key      string
	Value    string
}

// CodecOverride forces a codec for one output stream selector, e.g.
// {Selector: "s:s:2", Codec: "mov_text"}.
type CodecOverride struct {
	Selector string
	Codec    string
}

// Spec describes a single stream-copy rewrite of a container: optional extra
// subtitle inputs appended after the source, per-stream codec overrides, and
// metadata tag assignments. Audio and video payloads are never re-encoded.
type Spec struct {
	ExtraInputs    []string
	CodecOverrides []CodecOverride
	Tags           []Tag
}

// Empty reports whether the spec would change nothing.
func (s Spec) Empty() bool {
	return len(s.ExtraInputs) == 0 && len(s.Tags) == 0
}

// Runner executes an external command. Tests substitute a fake.
type Runner func(ctx context.Context, name string, args ...string) error

// Rewriter performs atomic metadata/stream rewrites through ffmpeg.
type Rewriter struct {
	ffmpeg string
	run    Runner
	logger *slog.Logger
}

// New constructs a Rewriter around the given ffmpeg binary.
func New(ffmpeg string, logger *slog.Logger) *Rewriter {
	if strings.TrimSpace(ffmpeg) == "" {
		ffmpeg = "ffmpeg"
	}
	return &Rewriter{ffmpeg: ffmpeg, run: defaultRunner, logger: logger}
}

// WithRunner sets a custom command runner (for testing).
func (r *Rewriter) WithRunner(run Runner) *Rewriter {
	r.run = run
	return r
}

func defaultRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Apply rewrites videoPath in place according to spec. The transaction writes
// to a temporary sibling file, atomically replaces the original only on
// success, and restores the original access/modification timestamps. On any
// failure the original file is left untouched and the temporary file removed.
func (r *Rewriter) Apply(ctx context.Context, videoPath string, spec Spec) error {
	if spec.Empty() {
		return nil
	}
	if !fileutil.IsRegularFile(videoPath) {
		return services.Wrap(services.ErrValidation, "rewrite", "stat", fmt.Sprintf("video file not found: %s", videoPath), nil)
	}

	times, err := fileutil.CaptureTimes(videoPath)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "rewrite", "capture times", videoPath, err)
	}

	tmpPath, err := fileutil.TempSibling(videoPath, ".langmux.")
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "rewrite", "temp output", videoPath, err)
	}
	defer func() {
		if removeErr := fileutil.RemoveIfExists(tmpPath); removeErr != nil && r.logger != nil {
			r.logger.Warn("failed to clean up temporary file",
				slog.String("path", tmpPath),
				slog.Any("error", removeErr),
			)
		}
	}()

	args := buildArgs(videoPath, tmpPath, spec)
	if err := r.run(ctx, r.ffmpeg, args...); err != nil {
		return services.Wrap(services.ErrRewrite, "rewrite", "ffmpeg", fmt.Sprintf("stream-copy rewrite of %s failed", videoPath), err)
	}

	if err := os.Rename(tmpPath, videoPath); err != nil {
		return services.Wrap(services.ErrFilesystem, "rewrite", "replace", videoPath, err)
	}

	if err := fileutil.RestoreTimes(videoPath, times); err != nil && r.logger != nil {
		r.logger.Warn("failed to restore file timestamps",
			slog.String("path", videoPath),
			slog.Any("error", err),
		)
	}
	return nil
}

// buildArgs assembles the ffmpeg invocation: overwrite the temp output, map
// every stream of the source plus each extra input wholesale, copy all
// payloads, and carry container metadata and chapters across.
func buildArgs(videoPath, tmpPath string, spec Spec) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", videoPath}
	for _, input := range spec.ExtraInputs {
		args = append(args, "-i", input)
	}

	args = append(args, "-map", "0")
	for i := range spec.ExtraInputs {
		args = append(args, "-map", fmt.Sprintf("%d", i+1))
	}

	args = append(args, "-c", "copy", "-map_metadata", "0", "-map_chapters", "0")

	for _, override := range spec.CodecOverrides {
		args = append(args, "-c:"+override.Selector, override.Codec)
	}
	for _, tag := range spec.Tags {
		args = append(args, "-metadata:"+tag.Selector, tag.Key+"="+tag.Value)
	}

	return append(args, tmpPath)
}
