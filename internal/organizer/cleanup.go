package organizer

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"langmux/internal/services"
	"langmux/internal/subtitles"
)

// unwantedDirNames are folders deleted wholesale during cleanup. Subs and
// Subtitles folders are only reached after their contents have been merged.
var unwantedDirNames = map[string]bool{
	"extras": true, "sample": true, "samples": true,
	"subs": true, "subtitles": true, "proof": true, "screenshots": true,
	"artwork": true, "cover": true, "covers": true, "poster": true,
}

// keepFileSuffixes are the only files that survive cleanup. The .!qB suffix
// marks an in-progress download.
var keepFileSuffixes = []string{".mkv", ".mp4", ".!qb"}

// CleanupStats summarizes a cleanup pass.
type CleanupStats struct {
	DirsRemoved      int
	FilesRemoved     int
	EmptyDirsRemoved int
}

// Cleanup removes unwanted folders, every file that is not a media payload or
// in-progress download (or has "sample" in its name), and the directories the
// removals left empty. The root itself is never removed. Paths under skipped
// trees are untouched.
func Cleanup(root string, logger *slog.Logger) (CleanupStats, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var stats CleanupStats

	var junkDirs, junkFiles []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if SkipPath(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && unwantedDirNames[strings.ToLower(d.Name())] {
				junkDirs = append(junkDirs, path)
				return filepath.SkipDir
			}
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.Contains(name, "sample") || !hasKeepSuffix(name) {
			junkFiles = append(junkFiles, path)
		}
		return nil
	})
	if err != nil {
		return stats, services.Wrap(services.ErrFilesystem, "organizer", "cleanup", fmt.Sprintf("walk %s", root), err)
	}

	for _, dir := range junkDirs {
		if err := os.RemoveAll(dir); err != nil {
			logger.Warn("unwanted folder not removed", "path", dir, "error", err)
			continue
		}
		logger.Info("unwanted folder removed", "path", dir)
		stats.DirsRemoved++
	}
	for _, file := range junkFiles {
		if err := os.Remove(file); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("unwanted file not removed", "path", file, "error", err)
			}
			continue
		}
		logger.Debug("unwanted file removed", "path", file)
		stats.FilesRemoved++
	}

	removed, err := pruneEmptyDirs(root)
	if err != nil {
		return stats, err
	}
	stats.EmptyDirsRemoved = removed
	return stats, nil
}

func hasKeepSuffix(lowerName string) bool {
	for _, suffix := range keepFileSuffixes {
		if strings.HasSuffix(lowerName, suffix) {
			return true
		}
	}
	return false
}

// pruneEmptyDirs removes empty directories bottom-up, leaving root in place.
func pruneEmptyDirs(root string) (int, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return 0, services.Wrap(services.ErrFilesystem, "organizer", "prune", fmt.Sprintf("walk %s", root), err)
	}

	// Deepest first so parents emptied by child removal go too.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	removed := 0
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err == nil {
			removed++
		}
	}
	return removed, nil
}

// FindVideoDirs walks root and returns every directory that directly contains
// a video file, skipping protected trees. Results are sorted.
func FindVideoDirs(root string) ([]string, error) {
	seen := make(map[string]bool)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if SkipPath(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if subtitles.IsVideo(d.Name()) {
			seen[filepath.Dir(path)] = true
		}
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "organizer", "scan", fmt.Sprintf("walk %s", root), err)
	}
	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Relocate moves a video into its canonical library location, creating
// parents as needed. Returns the destination path; a move onto itself is a
// no-op. An occupied destination is an error, never an overwrite.
func Relocate(video, libraryRoot string, includeQuality, capitalize bool) (string, error) {
	name := Parse(video)
	if name.Title == "" {
		return "", services.Wrap(services.ErrValidation, "organizer", "relocate",
			fmt.Sprintf("cannot derive a title from %s", filepath.Base(video)), nil)
	}
	dest := TargetPath(libraryRoot, name, includeQuality, capitalize)
	if dest == video {
		return dest, nil
	}
	if _, err := os.Stat(dest); err == nil {
		return "", services.Wrap(services.ErrValidation, "organizer", "relocate",
			fmt.Sprintf("destination already exists: %s", dest), nil)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", services.Wrap(services.ErrFilesystem, "organizer", "relocate", filepath.Dir(dest), err)
	}
	if err := os.Rename(video, dest); err != nil {
		return "", services.Wrap(services.ErrFilesystem, "organizer", "relocate",
			fmt.Sprintf("move %s", video), err)
	}
	return dest, nil
}
