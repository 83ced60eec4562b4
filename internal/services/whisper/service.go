package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"langmux/internal/services"
)

// Service wraps the faster-whisper CLI for spoken-language identification.
// The model is not used for transcription; only the language probe result is
// consumed.
type Service struct {
	cfg           Config
	resolvedPath  string
	initErr       error
	commandRunner func(ctx context.Context, name string, args ...string) (string, error)
}

// NewService creates a classifier service. Backend availability is resolved
// eagerly; an unavailable backend is reported by Available and every
// DetectLanguage call fails explicitly rather than guessing.
func NewService(cfg Config) *Service {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	s := &Service{cfg: cfg}
	s.resolvedPath, s.initErr = exec.LookPath(cfg.Command)
	return s
}

// WithCommandRunner sets a custom command runner (for testing) and marks the
// backend available.
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) *Service {
	s.commandRunner = runner
	s.initErr = nil
	return s
}

// Available reports whether the backend initialized successfully.
func (s *Service) Available() bool {
	return s.initErr == nil
}

// Model returns the configured model size for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// detectedLanguageRe matches the detection line the CLI prints when no
// language is forced, e.g. "Detected language 'English' with probability 0.976563".
var detectedLanguageRe = regexp.MustCompile(`(?i)detected language '?([A-Za-z]+)'?.*?probability[:\s=]+([0-9.]+)`)

// DetectLanguage runs the classifier over an audio clip and returns the
// detected language code (ISO 639-1, possibly empty) and the model's
// probability in [0,1].
func (s *Service) DetectLanguage(ctx context.Context, wavPath string) (string, float64, error) {
	if s.initErr != nil {
		return "", 0, services.Wrap(services.ErrClassifierUnavailable, "whisper", "detect",
			fmt.Sprintf("backend %q failed to initialize", s.cfg.Command), s.initErr)
	}

	outputDir := filepath.Dir(wavPath)
	args := s.buildArgs(wavPath, outputDir)

	output, err := s.run(ctx, s.binary(), args...)
	if err != nil {
		return "", 0, services.Wrap(services.ErrClassifier, "whisper", "detect", "inference failed", err)
	}

	lang, prob := parseDetection(output)
	if lang == "" {
		// The console line is authoritative for probability; the JSON result
		// still carries the code when output parsing misses.
		if fromJSON := languageFromResult(wavPath, outputDir); fromJSON != "" {
			lang = fromJSON
		}
	}
	return lang, prob, nil
}

func (s *Service) binary() string {
	if s.resolvedPath != "" {
		return s.resolvedPath
	}
	return s.cfg.Command
}

func (s *Service) run(ctx context.Context, name string, args ...string) (string, error) {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

func (s *Service) buildArgs(wavPath, outputDir string) []string {
	args := []string{
		wavPath,
		"--model", s.cfg.Model,
		"--device", device,
		"--compute_type", computeType,
		"--beam_size", beamSize,
		"--temperature", temperature,
		"--vad_filter", "True",
		"--output_format", "json",
		"--output_dir", outputDir,
		"--verbose", "True",
	}
	if s.cfg.CPUThreads > 0 {
		args = append(args, "--threads", strconv.Itoa(s.cfg.CPUThreads))
	}
	return args
}

func parseDetection(output string) (string, float64) {
	match := detectedLanguageRe.FindStringSubmatch(output)
	if match == nil {
		return "", 0
	}
	prob, err := strconv.ParseFloat(match[2], 64)
	if err != nil || prob < 0 || prob > 1 {
		prob = 0
	}
	return normalizeDetectedToken(match[1]), prob
}

// normalizeDetectedToken maps the CLI's language token to a lowercase code.
// Some versions print the code ("en"), others the English name ("English").
func normalizeDetectedToken(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if len(token) <= 3 {
		return token
	}
	if code, ok := nameToCode[token]; ok {
		return code
	}
	return ""
}

var nameToCode = map[string]string{
	"english": "en", "spanish": "es", "french": "fr", "german": "de",
	"italian": "it", "portuguese": "pt", "japanese": "ja", "korean": "ko",
	"chinese": "zh", "russian": "ru", "arabic": "ar", "hindi": "hi",
	"dutch": "nl", "polish": "pl", "swedish": "sv", "danish": "da",
	"norwegian": "no", "finnish": "fi", "turkish": "tr", "greek": "el",
	"hebrew": "he", "hungarian": "hu", "czech": "cs", "slovak": "sk",
	"romanian": "ro", "bulgarian": "bg", "ukrainian": "uk", "thai": "th",
	"vietnamese": "vi", "indonesian": "id", "malay": "ms", "persian": "fa",
	"tamil": "ta", "urdu": "ur", "catalan": "ca", "croatian": "hr",
	"serbian": "sr", "lithuanian": "lt", "latvian": "lv", "estonian": "et",
	"slovenian": "sl", "tagalog": "tl",
}

type resultPayload struct {
	Language string `json:"language"`
}

func languageFromResult(wavPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	data, err := os.ReadFile(filepath.Join(outputDir, base+".json"))
	if err != nil {
		return ""
	}
	var payload resultPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(payload.Language))
}
