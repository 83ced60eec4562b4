package subtitles

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"langmux/internal/logging"
	"langmux/internal/rewrite"
)

const subtitleProbePayload = `{
	"streams": [
		{"index": 2, "codec_name": "subrip", "codec_type": "subtitle", "tags": {"language": "eng"}}
	],
	"format": {"filename": "movie.mkv", "nb_streams": 3, "duration": "1800.0", "format_name": "matroska"}
}`

func newEmbedHarness(t *testing.T, deleteSources bool) (*Embedder, *[]string, *int) {
	t.Helper()
	var rewriteArgs []string
	calls := 0
	rewriter := rewrite.New("ffmpeg", logging.NewNop()).WithRunner(
		func(_ context.Context, _ string, args ...string) error {
			calls++
			rewriteArgs = append([]string{}, args...)
			return os.WriteFile(args[len(args)-1], []byte("merged"), 0o644)
		})
	embedder := NewEmbedder("ffprobe", rewriter, logging.NewNop(), deleteSources).
		WithProbeRunner(func(_ context.Context, _ string, _ ...string) ([]byte, error) {
			return []byte(subtitleProbePayload), nil
		})
	return embedder, &rewriteArgs, &calls
}

func TestEmbedAppendsAfterExistingStreams(t *testing.T) {
	dir := t.TempDir()
	video := write(t, dir, "movie.mkv", []byte("container"))
	srt := write(t, dir, "movie.fr.srt", []byte("bonjour"))

	embedder, args, _ := newEmbedHarness(t, false)
	added, err := embedder.Embed(context.Background(), video, []Candidate{{Path: srt, Language: "fra"}})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	joined := strings.Join(*args, " ")
	// One subtitle stream already exists, so the new track is s:s:1. Its
	// title is the language code.
	for _, fragment := range []string{"-i " + srt, "-map 0 -map 1", "-metadata:s:s:1 language=fra", "-metadata:s:s:1 title=fra"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("rewrite args missing %q: %s", fragment, joined)
		}
	}
	if strings.Contains(joined, "mov_text") {
		t.Errorf("mkv target must not convert codecs: %s", joined)
	}
	if _, err := os.Stat(srt); err != nil {
		t.Errorf("source must survive when deletion disabled: %v", err)
	}
}

func TestEmbedMP4FiltersFormatsAndConverts(t *testing.T) {
	dir := t.TempDir()
	video := write(t, dir, "movie.mp4", []byte("container"))
	srt := write(t, dir, "movie.en.srt", []byte("hello"))
	ass := write(t, dir, "movie.de.ass", []byte("Dialogue: stuff"))
	idxFile := write(t, dir, "movie.idx", []byte("index"))

	embedder, args, _ := newEmbedHarness(t, false)
	added, err := embedder.Embed(context.Background(), video, []Candidate{
		{Path: srt, Language: "eng", SDH: true},
		{Path: ass, Language: "deu"},
		{Path: idxFile},
	})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want only the srt", added)
	}
	joined := strings.Join(*args, " ")
	for _, fragment := range []string{"-c:s:1 mov_text", "-metadata:s:s:1 language=eng", "-metadata:s:s:1 title=eng SDH"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("rewrite args missing %q: %s", fragment, joined)
		}
	}
	if strings.Contains(joined, ".ass") || strings.Contains(joined, ".idx") {
		t.Errorf("incompatible formats merged into mp4: %s", joined)
	}
}

func TestEmbedDeletesSourcesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	video := write(t, dir, "movie.mkv", []byte("container"))
	idxFile := write(t, dir, "movie.idx", []byte("index"))
	write(t, dir, "movie.sub", []byte{0x01})

	embedder, _, _ := newEmbedHarness(t, true)
	if _, err := embedder.Embed(context.Background(), video, []Candidate{{Path: idxFile}}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for _, name := range []string{"movie.idx", "movie.sub"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s not deleted after merge", name)
		}
	}
}

func TestEmbedNothingEligible(t *testing.T) {
	dir := t.TempDir()
	video := write(t, dir, "movie.mp4", []byte("container"))
	idxFile := write(t, dir, "movie.idx", []byte("index"))

	embedder, _, calls := newEmbedHarness(t, true)
	added, err := embedder.Embed(context.Background(), video, []Candidate{{Path: idxFile}})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if added != 0 || *calls != 0 {
		t.Errorf("added=%d calls=%d, want no work", added, *calls)
	}
	if _, err := os.Stat(idxFile); err != nil {
		t.Errorf("skipped source must not be deleted: %v", err)
	}
}
