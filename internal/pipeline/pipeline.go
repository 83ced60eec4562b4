// Package pipeline runs the full library pass: subtitle merging, audio
// language tagging, cleanup, canonical renames, and index bookkeeping.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"langmux/internal/audiolang"
	"langmux/internal/config"
	"langmux/internal/index"
	"langmux/internal/organizer"
	"langmux/internal/services"
	"langmux/internal/subtitles"
)

// Pipeline coordinates the per-directory stages over a library tree.
type Pipeline struct {
	cfg            *config.Config
	logger         *slog.Logger
	tagger         *audiolang.Tagger
	embedder       *subtitles.Embedder
	embeddedTagger *subtitles.EmbeddedTagger
	store          *index.Store
}

// New assembles a Pipeline. The store is optional; without one every file is
// processed on every run.
func New(cfg *config.Config, logger *slog.Logger, tagger *audiolang.Tagger, embedder *subtitles.Embedder, embeddedTagger *subtitles.EmbeddedTagger, store *index.Store) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		cfg:            cfg,
		logger:         logger,
		tagger:         tagger,
		embedder:       embedder,
		embeddedTagger: embeddedTagger,
		store:          store,
	}
}

// Summary aggregates the outcome of a run.
type Summary struct {
	RunID           string
	Videos          int
	Skipped         int
	SubtitlesMerged int
	StreamsTagged   int
	Relocated       int
	Errors          int
	Cleanup         organizer.CleanupStats
}

// Run processes every video directory under root. Failures are scoped to the
// video they occur on; the run continues and reports them in the summary.
func (p *Pipeline) Run(ctx context.Context, root string) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	p.logger.Info("run started", "run_id", summary.RunID, "root", root)

	dirs, err := organizer.FindVideoDirs(root)
	if err != nil {
		return summary, err
	}
	p.logger.Info("library scan complete", "root", root, "directories", len(dirs))

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		p.processDir(ctx, dir, summary)
	}

	if p.cfg.Cleanup.Enabled {
		stats, err := organizer.Cleanup(root, p.logger)
		if err != nil {
			p.logger.Warn("cleanup pass failed", "root", root, "error", err)
			summary.Errors++
		}
		summary.Cleanup = stats
	}
	p.logger.Info("run finished",
		"run_id", summary.RunID,
		"videos", summary.Videos,
		"skipped", summary.Skipped,
		"subtitles_merged", summary.SubtitlesMerged,
		"streams_tagged", summary.StreamsTagged,
		"errors", summary.Errors)
	return summary, nil
}

func (p *Pipeline) processDir(ctx context.Context, dir string, summary *Summary) {
	plans, err := subtitles.Discover(dir)
	if err != nil {
		p.logger.Warn("directory skipped", "dir", dir, "error", err)
		summary.Errors++
		return
	}

	for _, plan := range plans {
		summary.Videos++
		if p.skipProcessed(ctx, plan.Video) {
			summary.Skipped++
			continue
		}
		p.processVideo(ctx, plan, summary)
	}
}

// processVideo runs the stages for one video. Subtitles are merged before
// audio tagging so the audio rewrite sees the final stream layout; the
// relocation happens last so every rewrite works on a stable path.
func (p *Pipeline) processVideo(ctx context.Context, plan subtitles.MergePlan, summary *Summary) {
	video := plan.Video
	failed := false

	if p.cfg.Subtitles.EmbedEnabled && p.embedder != nil && len(plan.Candidates) > 0 {
		merged, err := p.mergeSubtitles(ctx, plan)
		if err != nil {
			p.logger.Error("subtitle merge failed", "video", video, "error", err)
			summary.Errors++
			failed = true
		} else {
			summary.SubtitlesMerged += merged
		}
	}

	if p.cfg.Audio.Enabled && p.tagger != nil {
		report, err := p.tagger.TagFile(ctx, video)
		if err != nil {
			p.logger.Error("audio tagging failed", "video", video, "error", err)
			summary.Errors++
			failed = true
		} else {
			for _, stream := range report.Streams {
				if stream.Applied {
					summary.StreamsTagged++
				}
			}
		}
	}

	if p.embeddedTagger != nil {
		tagged, err := p.embeddedTagger.TagStreams(ctx, video)
		if err != nil {
			p.logger.Warn("embedded subtitle tagging failed", "video", video, "error", err)
			summary.Errors++
		} else {
			summary.StreamsTagged += tagged
		}
	}

	finalPath := video
	if p.cfg.Paths.LibraryRoot != "" && !failed {
		dest, err := organizer.Relocate(video, p.cfg.Paths.LibraryRoot, p.cfg.Naming.IncludeQuality, p.cfg.Naming.Capitalize)
		if err != nil {
			p.logger.Warn("relocation skipped", "video", video, "error", err)
			summary.Errors++
		} else if dest != video {
			p.logger.Info("relocated", "from", video, "to", dest)
			summary.Relocated++
			finalPath = dest
		}
	}

	if !failed {
		p.markProcessed(ctx, finalPath)
	}
}

func (p *Pipeline) mergeSubtitles(ctx context.Context, plan subtitles.MergePlan) (int, error) {
	paths := make([]string, 0, len(plan.Candidates))
	for _, c := range plan.Candidates {
		paths = append(paths, c.Path)
	}
	kept, err := subtitles.Deduplicate(paths)
	if err != nil {
		return 0, err
	}
	candidates := make([]subtitles.Candidate, 0, len(kept))
	for _, path := range kept {
		candidates = append(candidates, subtitles.Candidate{Path: path})
	}
	candidates = subtitles.Classify(candidates, p.logger)
	return p.embedder.Embed(ctx, plan.Video, candidates)
}

func (p *Pipeline) skipProcessed(ctx context.Context, video string) bool {
	if p.store == nil {
		return false
	}
	processed, err := p.store.IsFileProcessed(ctx, video)
	if err != nil {
		p.logger.Warn("index lookup failed", "video", video, "error", err)
		return false
	}
	if processed {
		p.logger.Debug("already processed", "video", filepath.Base(video))
	}
	return processed
}

func (p *Pipeline) markProcessed(ctx context.Context, video string) {
	if p.store == nil {
		return
	}
	if err := p.store.MarkFile(ctx, video); err != nil {
		if !services.Degradable(err) {
			p.logger.Warn("index update failed", "video", video, "error", err)
		}
	}
}
