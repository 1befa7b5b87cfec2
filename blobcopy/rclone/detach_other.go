//go:build !unix

package rclone

import "os/exec"

func detachSession(cmd *exec.Cmd) {}
