package subtitles

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"langmux/internal/services"
)

// Deduplicate removes redundant subtitle files from a candidate set. A .sub
// file loses to a same-stem .idx (the .idx references its .sub, keeping both
// would merge the track twice), and files with identical normalized content
// collapse to the lexicographically first absolute path. Order of the result
// is sorted.
func Deduplicate(paths []string) ([]string, error) {
	abs := make([]string, 0, len(paths))
	for _, path := range paths {
		resolved, err := filepath.Abs(path)
		if err != nil {
			return nil, services.Wrap(services.ErrFilesystem, "subtitles", "dedup", fmt.Sprintf("resolve %s", path), err)
		}
		abs = append(abs, resolved)
	}
	sort.Strings(abs)

	idxStems := make(map[string]bool)
	for _, path := range abs {
		if strings.EqualFold(filepath.Ext(path), ".idx") {
			idxStems[strings.ToLower(strings.TrimSuffix(path, filepath.Ext(path)))] = true
		}
	}

	seen := make(map[[sha256.Size]byte]bool)
	kept := make([]string, 0, len(abs))
	for _, path := range abs {
		if strings.EqualFold(filepath.Ext(path), ".sub") &&
			idxStems[strings.ToLower(strings.TrimSuffix(path, filepath.Ext(path)))] {
			continue
		}
		digest, err := contentDigest(path)
		if err != nil {
			return nil, err
		}
		if seen[digest] {
			continue
		}
		seen[digest] = true
		kept = append(kept, path)
	}
	return kept, nil
}

// contentDigest hashes a subtitle file. Text formats are normalized first so
// that BOM and line-ending variants of the same track hash identically.
func contentDigest(path string) ([sha256.Size]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return [sha256.Size]byte{}, services.Wrap(services.ErrFilesystem, "subtitles", "dedup", fmt.Sprintf("read %s", path), err)
	}
	if IsTextSubtitle(path) {
		data = normalizeText(data)
	}
	return sha256.Sum256(data), nil
}

func normalizeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
	return data
}
