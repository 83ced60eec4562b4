package audiolang

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"langmux/internal/language"
	"langmux/internal/media/ffprobe"
	"langmux/internal/rewrite"
	"langmux/internal/services"
	"langmux/internal/services/whisper"
)

// Tagger infers and embeds audio language tags for a single container file.
type Tagger struct {
	ffprobeBin string
	probeRun   ffprobe.Runner
	extractor  *whisper.Extractor
	classifier *whisper.Service
	rewriter   *rewrite.Rewriter
	logger     *slog.Logger
	tmpRoot    string
}

// NewTagger wires the probe, extractor, classifier, and rewriter into a
// tagging workflow.
func NewTagger(ffprobeBin string, extractor *whisper.Extractor, classifier *whisper.Service, rewriter *rewrite.Rewriter, logger *slog.Logger) *Tagger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tagger{
		ffprobeBin: ffprobeBin,
		extractor:  extractor,
		classifier: classifier,
		rewriter:   rewriter,
		logger:     logger,
	}
}

// WithProbeRunner sets a custom ffprobe runner (for testing).
func (t *Tagger) WithProbeRunner(run ffprobe.Runner) *Tagger {
	t.probeRun = run
	return t
}

// WithTempRoot overrides the parent directory for per-run scratch space.
func (t *Tagger) WithTempRoot(dir string) *Tagger {
	t.tmpRoot = dir
	return t
}

// StreamResult records the outcome for one audio stream.
type StreamResult struct {
	Stream     Stream
	Language   string
	Confidence float64
	// Reused marks a stream whose existing tag was accepted without
	// classification.
	Reused bool
	// Applied marks a stream whose tag was written by the rewrite.
	Applied bool
	Err     error
}

// Report summarizes a TagFile run.
type Report struct {
	Path      string
	Duration  float64
	Streams   []StreamResult
	Rewritten bool
}

// TagFile probes the container, classifies every untagged audio stream, and
// embeds the winning language codes in a single atomic rewrite. Streams that
// already carry a recognized language tag are reused at full confidence.
// Stream failures are isolated; a stream that cannot be classified is left
// untagged while the rest proceed.
func (t *Tagger) TagFile(ctx context.Context, path string) (*Report, error) {
	probed, err := t.probe(ctx, path)
	if err != nil {
		return nil, services.Wrap(services.ErrProbe, "audiolang", "probe", fmt.Sprintf("inspect %s", path), err)
	}

	report := &Report{Path: path, Duration: probed.DurationSeconds()}
	streams := StreamsFromProbe(probed)
	if len(streams) == 0 {
		t.logger.Debug("no audio streams", "path", path)
		return report, nil
	}

	scratch, err := os.MkdirTemp(t.tmpRoot, "langmux-audio-")
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "audiolang", "scratch", "create scratch directory", err)
	}
	defer os.RemoveAll(scratch)

	var tags []rewrite.Tag
	var pending []int
	for _, stream := range streams {
		result := StreamResult{Stream: stream}
		// StreamsFromProbe already normalized the tag, so any surviving value
		// is a usable three-letter code, including ones outside the mapping
		// table.
		if stream.Language != "" {
			result.Language = stream.Language
			result.Confidence = 1.0
			result.Reused = true
			t.logger.Debug("existing tag reused",
				"path", path, "stream", stream.AudioIndex, "language", stream.Language)
			report.Streams = append(report.Streams, result)
			continue
		}

		decision, classifyErr := t.classifyStream(ctx, path, stream, report.Duration, scratch)
		if classifyErr != nil {
			if errors.Is(classifyErr, services.ErrClassifierUnavailable) {
				return report, classifyErr
			}
			result.Err = classifyErr
			t.logger.Warn("stream classification failed",
				"path", path, "stream", stream.AudioIndex, "error", classifyErr)
			report.Streams = append(report.Streams, result)
			continue
		}

		result.Confidence = decision.Confidence
		if decision.Language != "" && decision.Language != stream.Language {
			result.Language = decision.Language
			pending = append(pending, len(report.Streams))
			tags = append(tags, rewrite.Tag{
				Selector: fmt.Sprintf("s:a:%d", stream.AudioIndex),
				Key:      "language",
				Value:    decision.Language,
			})
		} else if decision.Language == "" {
			t.logger.Info("language undetermined",
				"path", path, "stream", stream.AudioIndex,
				"confidence", decision.Confidence, "samples", decision.Samples)
		}
		report.Streams = append(report.Streams, result)
	}

	if len(tags) == 0 {
		return report, nil
	}

	if err := t.rewriter.Apply(ctx, path, rewrite.Spec{Tags: tags}); err != nil {
		return report, err
	}
	for _, idx := range pending {
		report.Streams[idx].Applied = true
	}
	report.Rewritten = true
	return report, nil
}

func (t *Tagger) probe(ctx context.Context, path string) (ffprobe.Result, error) {
	if t.probeRun != nil {
		return ffprobe.InspectWith(ctx, t.probeRun, t.ffprobeBin, path, "")
	}
	return ffprobe.Inspect(ctx, t.ffprobeBin, path, "")
}

// classifyStream samples the stream at the planned offsets and aggregates the
// observations. Extraction failures at individual offsets degrade to fewer
// samples rather than failing the stream.
func (t *Tagger) classifyStream(ctx context.Context, path string, stream Stream, duration float64, scratch string) (Decision, error) {
	offsets := PlanOffsets(duration)
	if len(offsets) == 0 {
		offsets = FallbackOffsets()
	}
	samples := make([]Sample, 0, len(offsets))
	for _, offset := range offsets {
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}
		clip := filepath.Join(scratch, fmt.Sprintf("a%d_t%d.wav", stream.AudioIndex, offset))
		if err := t.extractor.ExtractSample(ctx, path, stream.AudioIndex, offset, clip); err != nil {
			t.logger.Debug("sample extraction failed",
				"path", path, "stream", stream.AudioIndex, "offset", offset, "error", err)
			continue
		}
		code, confidence, err := t.classifier.DetectLanguage(ctx, clip)
		if err != nil {
			if errors.Is(err, services.ErrClassifierUnavailable) {
				return Decision{}, err
			}
			t.logger.Debug("clip classification failed",
				"path", path, "stream", stream.AudioIndex, "offset", offset, "error", err)
			continue
		}
		samples = append(samples, Sample{
			Language:   language.NormalizeISO3(code),
			Confidence: confidence,
		})
	}
	if len(samples) == 0 {
		return Decision{}, services.Wrap(services.ErrExtraction, "audiolang", "sample",
			fmt.Sprintf("no usable samples for stream %d", stream.AudioIndex), nil)
	}
	return Choose(samples), nil
}
