package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"langmux/internal/services"
)

// Requirement defines an external binary the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Defaults returns the requirements for a full pipeline run. The speech
// classifier is optional: audio tagging degrades to existing-tag reuse only.
func Defaults(whisperCommand string) []Requirement {
	if strings.TrimSpace(whisperCommand) == "" {
		whisperCommand = "whisper-ctranslate2"
	}
	return []Requirement{
		{Name: "ffprobe", Command: "ffprobe", Description: "container inspection"},
		{Name: "ffmpeg", Command: "ffmpeg", Description: "sample extraction and stream-copy rewrites"},
		{Name: "whisper", Command: whisperCommand, Description: "speech language identification", Optional: true},
	}
}

// Check evaluates the provided requirements and reports availability.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Require resolves a single command on PATH or returns a tagged error.
func Require(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", services.Wrap(services.ErrToolUnavailable, "deps", "resolve", "command not configured", nil)
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return "", services.Wrap(services.ErrToolUnavailable, "deps", "resolve",
			fmt.Sprintf("missing required tool %q; install ffmpeg and ensure it is on PATH", command), err)
	}
	return resolved, nil
}
