package subtitles

import "regexp"

// SDH detection works on two signals: explicit filename markers, and
// hearing-impaired conventions in the cue text (sound cues in brackets or
// parentheses, uppercase speaker labels).
var (
	sdhNameRe = regexp.MustCompile(`(?i)(^|[\W_])(sdh|hearing[\W_]*impaired)([\W_]|$)`)

	bracketCueRe = regexp.MustCompile(`\[[^\]]{1,40}\]`)
	parenCueRe   = regexp.MustCompile(`\([^\)]{1,40}\)`)
	speakerRe    = regexp.MustCompile(`(?m)^[A-Z][A-Z ]{2,20}:\s`)
)

const (
	minSoundCues     = 3
	minSpeakerLabels = 2
)

// IsSDHName reports whether a subtitle filename is explicitly marked as SDH.
func IsSDHName(name string) bool {
	return sdhNameRe.MatchString(name)
}

// LooksSDH inspects raw subtitle content for hearing-impaired conventions.
func LooksSDH(raw string) bool {
	cues := len(bracketCueRe.FindAllString(raw, minSoundCues)) +
		len(parenCueRe.FindAllString(raw, minSoundCues))
	if cues >= minSoundCues {
		return true
	}
	return len(speakerRe.FindAllString(raw, minSpeakerLabels)) >= minSpeakerLabels
}

// IsSDH combines both signals for a subtitle file.
func IsSDH(name, raw string) bool {
	return IsSDHName(name) || LooksSDH(raw)
}
