package tools

import "errors"

var (
	// ErrToolUnavailable means the executable could not be resolved.
	ErrToolUnavailable = errors.New("tool not found")

	// ErrToolFailed means the tool ran but exited non-zero or timed out.
	ErrToolFailed = errors.New("tool execution failed")
)
