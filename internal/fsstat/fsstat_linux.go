//go:build linux

package fsstat

import (
	"os"
	"syscall"
	"time"
)

func fillPlatform(s *Stat, info os.FileInfo) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}

	s.UID = stat.Uid
	s.GID = stat.Gid
	s.AccessTime = time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
}
