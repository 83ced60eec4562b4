// Package ffprobe wraps container inspection via the ffprobe binary,
// exposing the audio and subtitle stream layout and container duration.
package ffprobe
