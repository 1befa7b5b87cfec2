//go:build linux

package treewalk

import (
	"bufio"
	"os"
	"strings"
)

// networkFilesystems lists the filesystem types the froster original
// treats as remote/shared mounts worth reporting separately from local
// disk, parsed from /proc/self/mountinfo the same way _get_mount_info does.
var networkFilesystems = map[string]struct{}{
	"nfs": {}, "nfs4": {}, "cifs": {}, "smb": {}, "afs": {}, "ncp": {}, "ncpfs": {},
	"glusterfs": {}, "ceph": {}, "beegfs": {}, "lustre": {}, "orangefs": {}, "wekafs": {}, "gpfs": {},
}

// MountPoint describes one network filesystem mount discovered in
// /proc/self/mountinfo.
type MountPoint struct {
	MountPoint string
	FSType     string
	Source     string
}

// MountBoundaries parses /proc/self/mountinfo and returns every network
// filesystem mount point on the system, mirroring the froster original's
// _get_mount_info. It is best-effort: a read failure yields an empty list.
func MountBoundaries() []MountPoint {
	f, err := os.Open("/proc/self/mountinfo")
	if err != nil {
		return nil
	}
	defer f.Close()

	var mounts []MountPoint

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}

		mountPoint := fields[4]

		sepIdx := -1
		for i := 6; i < len(fields); i++ {
			if fields[i] == "-" {
				sepIdx = i
				break
			}
		}

		if sepIdx < 0 || sepIdx+2 >= len(fields) {
			continue
		}

		fsType := fields[sepIdx+1]
		source := fields[sepIdx+2]

		if _, ok := networkFilesystems[fsType]; ok {
			mounts = append(mounts, MountPoint{MountPoint: mountPoint, FSType: fsType, Source: source})
		}
	}

	return mounts
}

// LastPathSegment returns the final path component of p, after trimming
// any trailing separator (mirrors _get_last_directory).
func LastPathSegment(p string) string {
	p = strings.TrimRight(p, "/")

	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return p
	}

	return p[idx+1:]
}
