package subtitles

import (
	"path/filepath"
	"strings"
)

var videoExts = map[string]bool{
	".mkv": true, ".mp4": true, ".m4v": true, ".avi": true, ".mov": true, ".webm": true,
}

// textExts are subtitle formats carrying plain text that can be normalized
// and language-detected. VobSub (.idx/.sub image pairs) is handled as binary.
var textExts = map[string]bool{
	".srt": true, ".vtt": true, ".ass": true, ".ssa": true,
}

var subtitleExts = map[string]bool{
	".srt": true, ".vtt": true, ".ass": true, ".ssa": true, ".sub": true, ".idx": true,
}

// IsVideo reports whether path has a recognized video container extension.
func IsVideo(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// IsSubtitle reports whether path has a recognized subtitle extension.
func IsSubtitle(path string) bool {
	return subtitleExts[strings.ToLower(filepath.Ext(path))]
}

// IsTextSubtitle reports whether path is a text-based subtitle format.
func IsTextSubtitle(path string) bool {
	return textExts[strings.ToLower(filepath.Ext(path))]
}

// Stem returns the filename without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MatchesStem reports whether a subtitle filename belongs to a video with the
// given stem. A match is the identical stem or the stem followed by a
// separator and a qualifier, as in "Movie.en.srt" or "Movie-forced.srt".
// Comparison is case-insensitive.
func MatchesStem(subtitleName, videoStem string) bool {
	subStem := strings.ToLower(Stem(subtitleName))
	videoStem = strings.ToLower(videoStem)
	if subStem == videoStem {
		return true
	}
	if !strings.HasPrefix(subStem, videoStem) {
		return false
	}
	switch subStem[len(videoStem)] {
	case '.', '-', '_':
		return true
	}
	return false
}

// MatchesFolder reports whether a sidecar subfolder name belongs to a video
// stem. Subfolder names either equal the stem or extend it the same way
// subtitle filenames do.
func MatchesFolder(folderName, videoStem string) bool {
	return MatchesStem(folderName, videoStem)
}
