// Package whisper wraps a faster-whisper CLI backend for spoken-language
// identification and the ffmpeg clip extraction that feeds it.
package whisper
