package subtitles

import "testing"

func TestMatchesStem(t *testing.T) {
	cases := []struct {
		subtitle string
		stem     string
		want     bool
	}{
		{"Show S01E01.srt", "Show S01E01", true},
		{"Show S01E01.en.srt", "Show S01E01", true},
		{"Show S01E01-forced.srt", "Show S01E01", true},
		{"Show S01E01_sdh.srt", "Show S01E01", true},
		{"show s01e01.EN.srt", "Show S01E01", true},
		{"Show S01E010.srt", "Show S01E01", false},
		{"Show S01E02.srt", "Show S01E01", false},
		{"English.srt", "Show S01E01", false},
		{"Show.srt", "Show S01E01", false},
	}
	for _, tc := range cases {
		if got := MatchesStem(tc.subtitle, tc.stem); got != tc.want {
			t.Errorf("MatchesStem(%q, %q) = %v, want %v", tc.subtitle, tc.stem, got, tc.want)
		}
	}
}

func TestFileKinds(t *testing.T) {
	if !IsVideo("Movie.MKV") || IsVideo("Movie.srt") {
		t.Error("IsVideo misclassified")
	}
	if !IsSubtitle("track.idx") || IsSubtitle("cover.jpg") {
		t.Error("IsSubtitle misclassified")
	}
	if IsTextSubtitle("track.idx") || IsTextSubtitle("track.sub") || !IsTextSubtitle("track.srt") {
		t.Error("IsTextSubtitle misclassified")
	}
}
