// Package subtitles discovers external subtitle files for videos, classifies
// them (language, SDH), removes duplicates, and merges them into containers.
// It also tags embedded text subtitle streams that lack language metadata.
package subtitles
