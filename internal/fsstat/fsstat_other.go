//go:build !linux && !darwin

package fsstat

import "os"

// fillPlatform falls back to ModTime for AccessTime and leaves UID/GID
// zero on platforms without a syscall.Stat_t (e.g. windows), where
// atime/ownership have no direct POSIX equivalent.
func fillPlatform(s *Stat, info os.FileInfo) {
	s.AccessTime = info.ModTime()
}
