//go:build unix

package tools

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the child in its own process group and
// kills the whole group on cancellation, so tools that fork helpers do
// not outlive the scan.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}
