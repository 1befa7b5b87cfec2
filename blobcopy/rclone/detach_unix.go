//go:build unix

package rclone

import (
	"os/exec"
	"syscall"
)

// detachSession puts the mount subprocess in its own session so it
// survives the parent process exiting, matching the froster original's
// os.setsid preexec_fn for its background rclone mount invocation.
func detachSession(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
