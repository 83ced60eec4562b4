package subtitles

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"langmux/internal/language"
	"langmux/internal/media/ffprobe"
	"langmux/internal/rewrite"
	"langmux/internal/services"
)

// textCodecs are embedded subtitle codecs whose text can be dumped and
// language-detected.
var textCodecs = map[string]bool{
	"subrip": true, "srt": true, "ass": true, "ssa": true,
	"webvtt": true, "mov_text": true,
}

// EmbeddedTagger fills in language and title metadata for subtitle streams
// already inside a container. Languages come from the existing title's
// leading code token when present, otherwise from detection on the dumped
// stream text.
type EmbeddedTagger struct {
	ffprobeBin string
	ffmpegBin  string
	probeRun   ffprobe.Runner
	dumpRun    func(ctx context.Context, name string, args ...string) ([]byte, error)
	rewriter   *rewrite.Rewriter
	logger     *slog.Logger
}

// NewEmbeddedTagger builds an EmbeddedTagger around the given tool binaries.
func NewEmbeddedTagger(ffprobeBin, ffmpegBin string, rewriter *rewrite.Rewriter, logger *slog.Logger) *EmbeddedTagger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &EmbeddedTagger{
		ffprobeBin: ffprobeBin,
		ffmpegBin:  ffmpegBin,
		rewriter:   rewriter,
		logger:     logger,
	}
}

// WithProbeRunner sets a custom ffprobe runner (for testing).
func (t *EmbeddedTagger) WithProbeRunner(run ffprobe.Runner) *EmbeddedTagger {
	t.probeRun = run
	return t
}

// WithDumpRunner sets a custom stream-dump runner (for testing).
func (t *EmbeddedTagger) WithDumpRunner(run func(ctx context.Context, name string, args ...string) ([]byte, error)) *EmbeddedTagger {
	t.dumpRun = run
	return t
}

// TagStreams derives missing language and title metadata for embedded
// subtitle streams and writes everything in one rewrite. Returns the number
// of streams that received a tag. Per-stream derivation failures are skipped.
func (t *EmbeddedTagger) TagStreams(ctx context.Context, video string) (int, error) {
	var result ffprobe.Result
	var err error
	if t.probeRun != nil {
		result, err = ffprobe.InspectWith(ctx, t.probeRun, t.ffprobeBin, video, "s")
	} else {
		result, err = ffprobe.Inspect(ctx, t.ffprobeBin, video, "s")
	}
	if err != nil {
		return 0, services.Wrap(services.ErrProbe, "subtitles", "probe", fmt.Sprintf("inspect %s", video), err)
	}

	var tags []rewrite.Tag
	touched := 0
	for i, stream := range result.SubtitleStreams() {
		selector := fmt.Sprintf("s:s:%d", i)
		existing := language.NormalizeISO3(language.ExtractFromTags(stream.Tags))
		title := strings.TrimSpace(stream.Tags["title"])

		// A recognized language with no title gets the code as its title.
		if existing != "" && title == "" {
			tags = append(tags, rewrite.Tag{Selector: selector, Key: "title", Value: existing})
			touched++
			continue
		}

		// A title whose leading token is a language code settles the stream
		// without touching its content.
		if code := languageFromTitle(title); code != "" {
			if code != existing {
				tags = append(tags, rewrite.Tag{Selector: selector, Key: "language", Value: code})
				touched++
			}
			continue
		}

		if !textCodecs[strings.ToLower(stream.CodecName)] {
			continue
		}
		text, err := t.dumpStream(ctx, video, i)
		if err != nil {
			t.logger.Debug("subtitle stream dump failed", "video", video, "stream", i, "error", err)
			continue
		}
		code := DetectTextLanguage(text)
		if code == "" {
			continue
		}
		newTitle := code
		if LooksSDH(text) {
			newTitle = code + " SDH"
		}
		tags = append(tags,
			rewrite.Tag{Selector: selector, Key: "language", Value: code},
			rewrite.Tag{Selector: selector, Key: "title", Value: newTitle})
		touched++
	}
	if len(tags) == 0 {
		return 0, nil
	}

	if err := t.rewriter.Apply(ctx, video, rewrite.Spec{Tags: tags}); err != nil {
		return 0, err
	}
	t.logger.Info("embedded subtitles tagged", "video", video, "streams", touched)
	return touched, nil
}

// languageFromTitle returns the title's first token when it is a known ISO
// 639-2 code, as in titles like "eng SDH" or "fra Forced".
func languageFromTitle(title string) string {
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	token := strings.ToLower(fields[0])
	if language.KnownISO3(token) {
		return token
	}
	return ""
}

// dumpStream extracts the i-th subtitle stream as SubRip text on stdout.
func (t *EmbeddedTagger) dumpStream(ctx context.Context, video string, streamIdx int) (string, error) {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", video,
		"-map", fmt.Sprintf("0:s:%d", streamIdx),
		"-f", "srt",
		"-",
	}
	if t.dumpRun != nil {
		output, err := t.dumpRun(ctx, t.ffmpegBin, args...)
		return string(output), err
	}
	cmd := exec.CommandContext(ctx, t.ffmpegBin, args...)
	cmd.Stderr = nil
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.ffmpegBin, err)
	}
	return string(output), nil
}
