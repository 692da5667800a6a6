//go:build !unix

package tools

import "os/exec"

// configureProcessGroup is a no-op here; exec.CommandContext kills the
// direct child on cancellation.
func configureProcessGroup(cmd *exec.Cmd) {}
