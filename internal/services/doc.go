// Package services defines the shared failure taxonomy for external tool
// invocations (ffprobe, ffmpeg, the speech classifier) and helpers for
// wrapping errors with stage context.
package services
