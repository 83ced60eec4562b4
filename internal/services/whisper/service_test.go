package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"langmux/internal/services"
)

func TestDetectLanguageParsesConsoleLine(t *testing.T) {
	var gotName string
	var gotArgs []string
	svc := NewService(Config{Model: "tiny", CPUThreads: 2}).WithCommandRunner(
		func(_ context.Context, name string, args ...string) (string, error) {
			gotName = name
			gotArgs = args
			return "Detected language 'English' with probability 0.976563\n[00:00.000 --> 00:05.000] hello\n", nil
		})

	lang, prob, err := svc.DetectLanguage(context.Background(), "/tmp/sample.wav")
	if err != nil {
		t.Fatalf("DetectLanguage: %v", err)
	}
	if lang != "en" {
		t.Errorf("lang = %q, want en", lang)
	}
	if prob != 0.976563 {
		t.Errorf("prob = %v, want 0.976563", prob)
	}
	if gotName != DefaultCommand {
		t.Errorf("command = %q, want %q", gotName, DefaultCommand)
	}
	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{
		"/tmp/sample.wav",
		"--model tiny",
		"--beam_size 1",
		"--temperature 0",
		"--vad_filter True",
		"--output_format json",
		"--threads 2",
	} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("args missing %q: %s", fragment, joined)
		}
	}
}

func TestDetectLanguageCodeToken(t *testing.T) {
	svc := NewService(Config{}).WithCommandRunner(
		func(_ context.Context, _ string, _ ...string) (string, error) {
			return "Detected language 'fr' with probability 0.42", nil
		})
	lang, prob, err := svc.DetectLanguage(context.Background(), "/tmp/s.wav")
	if err != nil {
		t.Fatal(err)
	}
	if lang != "fr" || prob != 0.42 {
		t.Errorf("got (%q, %v), want (fr, 0.42)", lang, prob)
	}
}

func TestDetectLanguageFallsBackToJSONResult(t *testing.T) {
	dir := t.TempDir()
	wav := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(filepath.Join(dir, "clip.json"), []byte(`{"language":"ja","segments":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := NewService(Config{}).WithCommandRunner(
		func(_ context.Context, _ string, _ ...string) (string, error) {
			return "transcription output with no detection line", nil
		})
	lang, prob, err := svc.DetectLanguage(context.Background(), wav)
	if err != nil {
		t.Fatal(err)
	}
	if lang != "ja" {
		t.Errorf("lang = %q, want ja", lang)
	}
	if prob != 0 {
		t.Errorf("prob = %v, want 0 when no detection line", prob)
	}
}

func TestDetectLanguageInferenceFailure(t *testing.T) {
	svc := NewService(Config{}).WithCommandRunner(
		func(_ context.Context, _ string, _ ...string) (string, error) {
			return "", errors.New("exit status 1")
		})
	_, _, err := svc.DetectLanguage(context.Background(), "/tmp/s.wav")
	if !errors.Is(err, services.ErrClassifier) {
		t.Fatalf("expected ErrClassifier, got %v", err)
	}
}

func TestDetectLanguageUnavailableBackend(t *testing.T) {
	svc := NewService(Config{Command: "definitely-not-on-path-xyz"})
	if svc.Available() {
		t.Skip("unexpected binary on PATH")
	}
	_, _, err := svc.DetectLanguage(context.Background(), "/tmp/s.wav")
	if !errors.Is(err, services.ErrClassifierUnavailable) {
		t.Fatalf("expected ErrClassifierUnavailable, got %v", err)
	}
}

func TestNormalizeDetectedToken(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"English", "en"},
		{"en", "en"},
		{"JAPANESE", "ja"},
		{"nn", "nn"},
		{"Klingon", ""},
	}
	for _, tc := range cases {
		if got := normalizeDetectedToken(tc.in); got != tc.want {
			t.Errorf("normalizeDetectedToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractSampleArgs(t *testing.T) {
	var gotArgs []string
	ex := NewExtractor("ffmpeg").WithRunner(func(_ context.Context, _ string, args ...string) error {
		gotArgs = args
		return nil
	})
	if err := ex.ExtractSample(context.Background(), "movie.mkv", 1, 300, "/tmp/clip.wav"); err != nil {
		t.Fatalf("ExtractSample: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{
		"-ss 300",
		"-i movie.mkv",
		"-map 0:a:1",
		"-t 20",
		"-vn -sn -dn",
		"-ac 1",
		"-ar 16000",
		"-f wav",
	} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("args missing %q: %s", fragment, joined)
		}
	}
	if gotArgs[len(gotArgs)-1] != "/tmp/clip.wav" {
		t.Errorf("dest must be last arg: %v", gotArgs)
	}
}

func TestExtractSampleRejectsNegativeStream(t *testing.T) {
	ex := NewExtractor("ffmpeg").WithRunner(func(_ context.Context, _ string, _ ...string) error { return nil })
	if err := ex.ExtractSample(context.Background(), "movie.mkv", -1, 0, "/tmp/clip.wav"); err == nil {
		t.Fatal("expected error for negative stream index")
	}
}
