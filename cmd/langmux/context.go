package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"langmux/internal/audiolang"
	"langmux/internal/config"
	"langmux/internal/deps"
	"langmux/internal/logging"
	"langmux/internal/rewrite"
	"langmux/internal/services/whisper"
	"langmux/internal/subtitles"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := ""
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		if path == "" {
			path = config.DefaultPath()
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) buildLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

// toolchain bundles the wired services every media-touching command needs.
type toolchain struct {
	cfg            *config.Config
	logger         *slog.Logger
	ffprobe        string
	ffmpeg         string
	rewriter       *rewrite.Rewriter
	tagger         *audiolang.Tagger
	embedder       *subtitles.Embedder
	embeddedTagger *subtitles.EmbeddedTagger
}

func (c *commandContext) buildToolchain() (*toolchain, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.buildLogger()
	if err != nil {
		return nil, err
	}

	ffprobePath, err := deps.Require("ffprobe")
	if err != nil {
		return nil, err
	}
	ffmpegPath, err := deps.Require("ffmpeg")
	if err != nil {
		return nil, err
	}

	rewriter := rewrite.New(ffmpegPath, logging.WithComponent(logger, "rewrite"))
	extractor := whisper.NewExtractor(ffmpegPath)
	classifier := whisper.NewService(whisper.Config{
		Command:    cfg.Audio.WhisperCommand,
		Model:      cfg.Audio.ModelSize,
		CPUThreads: cfg.Audio.CPUThreads,
	})

	return &toolchain{
		cfg:      cfg,
		logger:   logger,
		ffprobe:  ffprobePath,
		ffmpeg:   ffmpegPath,
		rewriter: rewriter,
		tagger: audiolang.NewTagger(ffprobePath, extractor, classifier, rewriter,
			logging.WithComponent(logger, "audiolang")),
		embedder: subtitles.NewEmbedder(ffprobePath, rewriter,
			logging.WithComponent(logger, "subtitles"), true),
		embeddedTagger: subtitles.NewEmbeddedTagger(ffprobePath, ffmpegPath, rewriter,
			logging.WithComponent(logger, "subtitles")),
	}, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
