// Package config loads and validates the TOML configuration controlling the
// pipeline: audio tagging, subtitle embedding, cleanup, and the library lock.
package config
