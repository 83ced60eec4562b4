package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Times holds the access and modification timestamps of a file at nanosecond
// precision, captured before a rewrite so they can be restored afterwards.
type Times struct {
	Atime unix.Timespec
	Mtime unix.Timespec
}

// CaptureTimes reads the current access/modification timestamps of path.
func CaptureTimes(path string) (Times, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Times{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Times{
		Atime: unix.Timespec{Sec: st.Atim.Sec, Nsec: st.Atim.Nsec},
		Mtime: unix.Timespec{Sec: st.Mtim.Sec, Nsec: st.Mtim.Nsec},
	}, nil
}

// RestoreTimes writes previously captured timestamps back onto path.
func RestoreTimes(path string, times Times) error {
	ts := []unix.Timespec{times.Atime, times.Mtime}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, ts, 0); err != nil {
		return fmt.Errorf("restore times %s: %w", path, err)
	}
	return nil
}

// TempSibling creates an empty temporary file in the same directory as path,
// keeping the original extension so container tools infer the right format.
// The caller owns the returned path.
func TempSibling(path, prefix string) (string, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	f, err := os.CreateTemp(dir, prefix+"*"+ext)
	if err != nil {
		return "", fmt.Errorf("temp sibling for %s: %w", path, err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("temp sibling for %s: %w", path, err)
	}
	return name, nil
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// IsRegularFile reports whether path exists and is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
