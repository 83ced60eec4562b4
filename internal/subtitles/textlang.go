package subtitles

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"

	"langmux/internal/language"
)

const (
	// maxDetectBytes bounds the slice fed to cleaning; a few thousand cue
	// lines are plenty for detection.
	maxDetectBytes = 20000
	// minLetters is the floor below which detection is refused. Sparse
	// dialogue gives unstable results.
	minLetters = 40
)

var (
	timestampLineRe = regexp.MustCompile(`^\s*\d{2}:\d{2}:\d{2}[.,]\d{3}\s*-->`)
	cueNumberRe     = regexp.MustCompile(`^\s*\d+\s*$`)
	assOverrideRe   = regexp.MustCompile(`\{[^}]*\}`)
	htmlTagRe       = regexp.MustCompile(`<[^>]+>`)
)

// CleanForDetection strips subtitle markup from raw file content, keeping
// only dialogue text. Handles SubRip, WebVTT, and SubStation formats.
func CleanForDetection(raw string) string {
	if len(raw) > maxDetectBytes {
		raw = raw[:maxDetectBytes]
	}
	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var sb strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "" || trimmed == "WEBVTT" || strings.HasPrefix(trimmed, "WEBVTT "):
			continue
		case timestampLineRe.MatchString(trimmed):
			continue
		case cueNumberRe.MatchString(trimmed):
			continue
		case strings.HasPrefix(trimmed, "Dialogue:"):
			// SubStation events carry the text in the tenth comma field.
			parts := strings.SplitN(trimmed, ",", 10)
			if len(parts) == 10 {
				sb.WriteString(parts[9])
				sb.WriteByte('\n')
			}
			continue
		case strings.Contains(trimmed, ":") && looksLikeSectionHeader(trimmed):
			continue
		}
		sb.WriteString(trimmed)
		sb.WriteByte('\n')
	}

	cleaned := sb.String()
	cleaned = assOverrideRe.ReplaceAllString(cleaned, " ")
	cleaned = htmlTagRe.ReplaceAllString(cleaned, " ")
	return cleaned
}

// looksLikeSectionHeader filters SubStation metadata lines such as
// "Style: Default,..." and "Format: Layer, Start, End".
func looksLikeSectionHeader(line string) bool {
	idx := strings.Index(line, ":")
	if idx <= 0 || idx > 20 {
		return false
	}
	switch line[:idx] {
	case "Title", "ScriptType", "Style", "Format", "PlayResX", "PlayResY",
		"WrapStyle", "Collisions", "ScaledBorderAndShadow", "Comment":
		return true
	}
	return false
}

// DetectTextLanguage classifies the language of raw subtitle content and
// returns a normalized ISO 639-2 code, or empty when the content is too
// sparse or the detector is unsure.
func DetectTextLanguage(raw string) string {
	cleaned := CleanForDetection(raw)
	letters := 0
	for _, r := range cleaned {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < minLetters {
		return ""
	}

	info := whatlanggo.Detect(cleaned)
	if !info.IsReliable() {
		return ""
	}
	return language.NormalizeISO3(info.Lang.Iso6393())
}
