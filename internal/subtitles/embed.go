package subtitles

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"langmux/internal/media/ffprobe"
	"langmux/internal/rewrite"
	"langmux/internal/services"
)

// mp4SafeExts are the external formats that can be carried by an MP4
// container after conversion to mov_text. Image-based and SubStation tracks
// are skipped for MP4 targets.
var mp4SafeExts = map[string]bool{".srt": true, ".vtt": true}

// Embedder merges external subtitle files into a video container.
type Embedder struct {
	ffprobeBin    string
	probeRun      ffprobe.Runner
	rewriter      *rewrite.Rewriter
	logger        *slog.Logger
	deleteSources bool
}

// NewEmbedder builds an Embedder. When deleteSources is set, merged subtitle
// files are removed after a successful rewrite.
func NewEmbedder(ffprobeBin string, rewriter *rewrite.Rewriter, logger *slog.Logger, deleteSources bool) *Embedder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Embedder{
		ffprobeBin:    ffprobeBin,
		rewriter:      rewriter,
		logger:        logger,
		deleteSources: deleteSources,
	}
}

// WithProbeRunner sets a custom ffprobe runner (for testing).
func (e *Embedder) WithProbeRunner(run ffprobe.Runner) *Embedder {
	e.probeRun = run
	return e
}

// Classify fills in language and SDH annotations for text candidates by
// reading their content. Unreadable files are dropped from the plan.
func Classify(candidates []Candidate, logger *slog.Logger) []Candidate {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	classified := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !IsTextSubtitle(c.Path) {
			c.SDH = IsSDHName(filepath.Base(c.Path))
			classified = append(classified, c)
			continue
		}
		data, err := os.ReadFile(c.Path)
		if err != nil {
			logger.Warn("unreadable subtitle dropped", "path", c.Path, "error", err)
			continue
		}
		raw := string(data)
		c.Language = DetectTextLanguage(raw)
		c.SDH = IsSDH(filepath.Base(c.Path), raw)
		classified = append(classified, c)
	}
	return classified
}

// Embed merges candidates into the video in one atomic rewrite and returns
// the number of tracks added. Tracks with a detected language get language
// and title tags, the title being the code or "<code> SDH". MP4 targets only
// accept mov_text-convertible formats. On success, source files (and the .sub
// companion of a merged .idx) are deleted when the Embedder is configured to
// do so.
func (e *Embedder) Embed(ctx context.Context, video string, candidates []Candidate) (int, error) {
	isMP4 := isMP4Container(video)
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		ext := strings.ToLower(filepath.Ext(c.Path))
		if isMP4 && !mp4SafeExts[ext] {
			e.logger.Debug("subtitle format not supported by mp4", "path", c.Path)
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return 0, nil
	}

	existing, err := e.countSubtitleStreams(ctx, video)
	if err != nil {
		return 0, err
	}

	spec := rewrite.Spec{}
	for i, c := range eligible {
		spec.ExtraInputs = append(spec.ExtraInputs, c.Path)
		streamIdx := existing + i
		if isMP4 {
			spec.CodecOverrides = append(spec.CodecOverrides, rewrite.CodecOverride{
				Selector: fmt.Sprintf("s:%d", streamIdx),
				Codec:    "mov_text",
			})
		}
		// Untagged tracks are still embedded; they just carry no metadata.
		selector := fmt.Sprintf("s:s:%d", streamIdx)
		if c.Language != "" {
			spec.Tags = append(spec.Tags, rewrite.Tag{Selector: selector, Key: "language", Value: c.Language})
			title := c.Language
			if c.SDH {
				title = c.Language + " SDH"
			}
			spec.Tags = append(spec.Tags, rewrite.Tag{Selector: selector, Key: "title", Value: title})
		}
	}

	if err := e.rewriter.Apply(ctx, video, spec); err != nil {
		return 0, err
	}
	e.logger.Info("subtitles merged", "video", video, "tracks", len(eligible))

	if e.deleteSources {
		for _, c := range eligible {
			e.removeSource(c.Path)
		}
	}
	return len(eligible), nil
}

func (e *Embedder) countSubtitleStreams(ctx context.Context, video string) (int, error) {
	var result ffprobe.Result
	var err error
	if e.probeRun != nil {
		result, err = ffprobe.InspectWith(ctx, e.probeRun, e.ffprobeBin, video, "s")
	} else {
		result, err = ffprobe.Inspect(ctx, e.ffprobeBin, video, "s")
	}
	if err != nil {
		return 0, services.Wrap(services.ErrProbe, "subtitles", "probe", fmt.Sprintf("inspect %s", video), err)
	}
	return len(result.SubtitleStreams()), nil
}

func (e *Embedder) removeSource(path string) {
	targets := []string{path}
	if strings.EqualFold(filepath.Ext(path), ".idx") {
		targets = append(targets, strings.TrimSuffix(path, filepath.Ext(path))+".sub")
	}
	for _, target := range targets {
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("merged subtitle not removed", "path", target, "error", err)
		}
	}
}

func isMP4Container(video string) bool {
	switch strings.ToLower(filepath.Ext(video)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}
	return false
}
