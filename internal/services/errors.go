package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the pipeline failure taxonomy. Every external-tool or
// filesystem failure is wrapped with one of these so callers at the per-video
// or per-stream boundary can decide whether to skip, degrade, or abort.
var (
	ErrToolUnavailable       = errors.New("tool unavailable")
	ErrProbe                 = errors.New("probe failure")
	ErrExtraction            = errors.New("extraction failure")
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrClassifier            = errors.New("classifier failure")
	ErrRewrite               = errors.New("rewrite failure")
	ErrFilesystem            = errors.New("filesystem error")
	ErrValidation            = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Degradable reports whether an error should degrade gracefully rather than
// abort the unit of work. Probe and extraction failures contribute no data but
// never stop the remaining samples or streams.
func Degradable(err error) bool {
	return errors.Is(err, ErrProbe) || errors.Is(err, ErrExtraction)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
