package subtitles

import (
	"os"
	"path/filepath"
	"testing"
)

func mkfile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("1\n00:00:01,000 --> 00:00:02,000\nhello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func candidatePaths(plan MergePlan) []string {
	paths := make([]string, 0, len(plan.Candidates))
	for _, c := range plan.Candidates {
		paths = append(paths, c.Path)
	}
	return paths
}

func TestDiscoverSameFolderStemMatch(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "Show S01E01.mkv"))
	mkfile(t, filepath.Join(dir, "Show S01E02.mkv"))
	mkfile(t, filepath.Join(dir, "Show S01E01.en.srt"))
	mkfile(t, filepath.Join(dir, "Show S01E02-forced.srt"))
	mkfile(t, filepath.Join(dir, "Show S01E02.srt"))

	plans, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("plans = %d, want 2", len(plans))
	}
	if got := candidatePaths(plans[0]); len(got) != 1 || filepath.Base(got[0]) != "Show S01E01.en.srt" {
		t.Errorf("E01 candidates = %v", got)
	}
	if got := candidatePaths(plans[1]); len(got) != 2 {
		t.Errorf("E02 candidates = %v, want both stem variants", got)
	}
}

func TestDiscoverSidecarSubfolder(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "Movie.mkv"))
	mkfile(t, filepath.Join(dir, "Other.mkv"))
	mkfile(t, filepath.Join(dir, "Subs", "Movie", "English.srt"))
	mkfile(t, filepath.Join(dir, "Subs", "Movie", "French.srt"))
	mkfile(t, filepath.Join(dir, "Subs", "Other.en.srt"))

	plans, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("plans = %d, want 2", len(plans))
	}
	if got := candidatePaths(plans[0]); len(got) != 2 {
		t.Errorf("subfolder match failed: %v", got)
	}
	// No subfolder for "Other", so the direct stem match at the sidecar root applies.
	if got := candidatePaths(plans[1]); len(got) != 1 || filepath.Base(got[0]) != "Other.en.srt" {
		t.Errorf("direct sidecar match failed: %v", got)
	}
}

func TestDiscoverSingleVideoClaimsRemaining(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "Movie.mkv"))
	mkfile(t, filepath.Join(dir, "English.srt"))
	mkfile(t, filepath.Join(dir, "Subtitles", "2_French.srt"))

	plans, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("plans = %d, want 1", len(plans))
	}
	got := candidatePaths(plans[0])
	if len(got) != 2 {
		t.Fatalf("single-video fallback candidates = %v, want 2", got)
	}
}

func TestDiscoverMultipleVideosLeaveUnmatchedAlone(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "A.mkv"))
	mkfile(t, filepath.Join(dir, "B.mkv"))
	mkfile(t, filepath.Join(dir, "English.srt"))

	plans, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	for _, plan := range plans {
		if len(plan.Candidates) != 0 {
			t.Errorf("unmatched subtitle assigned with multiple videos: %v", candidatePaths(plan))
		}
	}
}

func TestDiscoverDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "Movie.mkv"))
	mkfile(t, filepath.Join(dir, "Movie.en.srt"))
	mkfile(t, filepath.Join(dir, "Movie.de.srt"))
	mkfile(t, filepath.Join(dir, "Movie.fr.srt"))

	first, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Discover(dir)
		if err != nil {
			t.Fatal(err)
		}
		a, b := candidatePaths(first[0]), candidatePaths(again[0])
		if len(a) != len(b) {
			t.Fatalf("plan size changed between runs")
		}
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("plan order changed: %v vs %v", a, b)
			}
		}
	}
}
