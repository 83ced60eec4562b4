// Package organizer normalizes release-style file names and prunes the
// clutter that ships alongside media downloads.
package organizer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	episodeRe = regexp.MustCompile(`(?i)(?:^|[ ._-])s(\d{1,2})[ ._]?e(\d{2,3})(?:[ ._-]|$)`)
	yearRe    = regexp.MustCompile(`(?:^|[ ._(-])((?:19|20)\d{2})(?:[ ._)-]|$)`)
	qualityRe = regexp.MustCompile(`(?i)(?:^|[ ._-])(2160p|1080p|720p|480p)(?:[ ._-]|$)`)

	// noiseRe matches release tokens that carry no value in a library name.
	noiseRe = regexp.MustCompile(`(?i)(?:^|[ ._-])(web[ ._-]?dl|webrip|bluray|blu[ ._-]ray|bdrip|brrip|hdtv|dvdrip|remux|proper|repack|internal|extended|unrated|x264|x265|h[ ._-]?264|h[ ._-]?265|hevc|avc|aac|ac3|eac3|dts(?:[ ._-]?hd)?|ddp?[ ._-]?[57][ ._-]?1|10bit|hdr10?|atmos)(?:[ ._-]|$)`)
)

// MediaName is the parsed identity of a media file.
type MediaName struct {
	Title   string
	Year    int
	Season  int
	Episode int
	Quality string
	Ext     string
}

// IsEpisode reports whether the name parsed as a series episode.
func (n MediaName) IsEpisode() bool {
	return n.Season > 0 || n.Episode > 0
}

// Parse extracts title, year, episode numbering, and quality from a
// release-style filename.
func Parse(filename string) MediaName {
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	name := MediaName{Ext: strings.ToLower(ext)}
	titleEnd := len(stem)

	if m := episodeRe.FindStringSubmatchIndex(stem); m != nil {
		name.Season, _ = strconv.Atoi(stem[m[2]:m[3]])
		name.Episode, _ = strconv.Atoi(stem[m[4]:m[5]])
		titleEnd = m[0]
	}
	if m := yearRe.FindStringSubmatchIndex(stem); m != nil {
		name.Year, _ = strconv.Atoi(stem[m[2]:m[3]])
		if m[0] < titleEnd {
			titleEnd = m[0]
		}
	}
	if m := qualityRe.FindStringSubmatch(stem); m != nil {
		name.Quality = strings.ToLower(m[1])
		if idx := qualityRe.FindStringSubmatchIndex(stem); idx[0] < titleEnd {
			titleEnd = idx[0]
		}
	}

	title := stem[:titleEnd]
	title = noiseRe.ReplaceAllString(title, " ")
	title = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(title)
	title = strings.Join(strings.Fields(title), " ")
	name.Title = title
	return name
}

// minorWords stay lowercase in title case unless they lead the title.
var minorWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "nor": true,
	"of": true, "in": true, "on": true, "at": true, "to": true, "for": true,
	"with": true, "by": true, "as": true,
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// TitleCase capitalizes a title, keeping minor words lowercase except in the
// leading position.
func TitleCase(title string) string {
	words := strings.Fields(strings.ToLower(title))
	for i, word := range words {
		if i > 0 && minorWords[word] {
			continue
		}
		words[i] = titleCaser.String(word)
	}
	return strings.Join(words, " ")
}

// Format renders the canonical library filename.
func (n MediaName) Format(includeQuality, capitalize bool) string {
	title := n.Title
	if capitalize {
		title = TitleCase(title)
	}

	var sb strings.Builder
	sb.WriteString(title)
	if n.IsEpisode() {
		fmt.Fprintf(&sb, " - S%02dE%02d", n.Season, n.Episode)
	} else if n.Year > 0 {
		fmt.Fprintf(&sb, " (%d)", n.Year)
	}
	if includeQuality && n.Quality != "" {
		fmt.Fprintf(&sb, " [%s]", n.Quality)
	}
	sb.WriteString(n.Ext)
	return sb.String()
}

// TargetPath places a formatted name under the library root: episodes under
// "Title/Season NN/", movies under "Title (Year)/".
func TargetPath(libraryRoot string, n MediaName, includeQuality, capitalize bool) string {
	title := n.Title
	if capitalize {
		title = TitleCase(title)
	}
	filename := n.Format(includeQuality, capitalize)
	if n.IsEpisode() {
		return filepath.Join(libraryRoot, title, fmt.Sprintf("Season %02d", n.Season), filename)
	}
	folder := title
	if n.Year > 0 {
		folder = fmt.Sprintf("%s (%d)", title, n.Year)
	}
	return filepath.Join(libraryRoot, folder, filename)
}

// SkipPath reports whether a path belongs to a tree the pipeline must never
// touch, such as Plex optimized-version folders.
func SkipPath(path string) bool {
	for _, element := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.EqualFold(element, "Plex Versions") {
			return true
		}
	}
	return false
}
