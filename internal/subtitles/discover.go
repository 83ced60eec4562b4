package subtitles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"langmux/internal/services"
)

// Candidate is an external subtitle file slated for merging, annotated once
// classified.
type Candidate struct {
	Path string
	// Language is the detected ISO 639-2 code, empty when undetermined.
	Language string
	SDH      bool
}

// MergePlan pairs a video with the external subtitles that belong to it.
type MergePlan struct {
	Video      string
	Candidates []Candidate
}

// sidecarDirNames are the conventional subtitle folder names, matched
// case-insensitively.
var sidecarDirNames = map[string]bool{"subs": true, "subtitles": true}

// Discover builds merge plans for every video directly inside dir. Subtitles
// are matched by stem in the same folder, then inside Subs/Subtitles sidecar
// folders (per-video subfolder first, direct files second). When the
// directory holds a single video, subtitles that matched nothing are assigned
// to it. Candidate lists are sorted and deduplicated so repeated runs produce
// identical plans.
func Discover(dir string) ([]MergePlan, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "subtitles", "discover", fmt.Sprintf("read %s", dir), err)
	}

	var videos []string
	var looseSubs []string
	var sidecars []string
	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)
		if entry.IsDir() {
			if sidecarDirNames[strings.ToLower(name)] {
				sidecars = append(sidecars, full)
			}
			continue
		}
		switch {
		case IsVideo(name):
			videos = append(videos, full)
		case IsSubtitle(name):
			looseSubs = append(looseSubs, full)
		}
	}
	sort.Strings(videos)
	sort.Strings(looseSubs)

	claimed := make(map[string]bool)
	plans := make([]MergePlan, 0, len(videos))
	for _, video := range videos {
		stem := Stem(video)
		var matched []string

		for _, sub := range looseSubs {
			if MatchesStem(filepath.Base(sub), stem) {
				matched = append(matched, sub)
				claimed[sub] = true
			}
		}
		for _, sidecar := range sidecars {
			fromSidecar, err := collectFromSidecar(sidecar, stem, claimed)
			if err != nil {
				return nil, err
			}
			matched = append(matched, fromSidecar...)
		}
		plans = append(plans, MergePlan{Video: video, Candidates: toCandidates(matched)})
	}

	// A lone video owns whatever did not match by name. Release folders often
	// ship "English.srt" style names that no stem rule can claim.
	if len(plans) == 1 {
		var remaining []string
		for _, sub := range looseSubs {
			if !claimed[sub] {
				remaining = append(remaining, sub)
			}
		}
		for _, sidecar := range sidecars {
			unclaimed, err := collectUnclaimed(sidecar, claimed)
			if err != nil {
				return nil, err
			}
			remaining = append(remaining, unclaimed...)
		}
		merged := make([]string, 0, len(plans[0].Candidates)+len(remaining))
		for _, c := range plans[0].Candidates {
			merged = append(merged, c.Path)
		}
		merged = append(merged, remaining...)
		plans[0].Candidates = toCandidates(merged)
	}
	return plans, nil
}

// collectFromSidecar gathers subtitles for one video stem from a sidecar
// directory. A subfolder named after the video takes priority; without one,
// stem-matched files at the sidecar root are used.
func collectFromSidecar(sidecar, stem string, claimed map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(sidecar)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "subtitles", "discover", fmt.Sprintf("read %s", sidecar), err)
	}

	var matched []string
	folderHit := false
	for _, entry := range entries {
		if !entry.IsDir() || !MatchesFolder(entry.Name(), stem) {
			continue
		}
		folderHit = true
		inside, err := collectSubtitleFiles(filepath.Join(sidecar, entry.Name()))
		if err != nil {
			return nil, err
		}
		for _, sub := range inside {
			matched = append(matched, sub)
			claimed[sub] = true
		}
	}
	if folderHit {
		return matched, nil
	}

	for _, entry := range entries {
		if entry.IsDir() || !IsSubtitle(entry.Name()) {
			continue
		}
		if MatchesStem(entry.Name(), stem) {
			full := filepath.Join(sidecar, entry.Name())
			matched = append(matched, full)
			claimed[full] = true
		}
	}
	return matched, nil
}

func collectUnclaimed(sidecar string, claimed map[string]bool) ([]string, error) {
	all, err := collectSubtitleFiles(sidecar)
	if err != nil {
		return nil, err
	}
	var unclaimed []string
	for _, sub := range all {
		if !claimed[sub] {
			unclaimed = append(unclaimed, sub)
		}
	}
	return unclaimed, nil
}

// collectSubtitleFiles walks a sidecar tree and returns every subtitle file
// in sorted order.
func collectSubtitleFiles(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsSubtitle(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "subtitles", "discover", fmt.Sprintf("walk %s", root), err)
	}
	sort.Strings(found)
	return found, nil
}

func toCandidates(paths []string) []Candidate {
	sort.Strings(paths)
	candidates := make([]Candidate, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		if seen[path] {
			continue
		}
		seen[path] = true
		candidates = append(candidates, Candidate{Path: path})
	}
	return candidates
}
