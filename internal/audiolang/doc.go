// Package audiolang infers spoken languages for audio streams and embeds the
// results as container metadata. Offsets are planned from the container
// duration, short clips are extracted and classified, and per-clip
// observations are aggregated by vote before a single atomic rewrite.
package audiolang
