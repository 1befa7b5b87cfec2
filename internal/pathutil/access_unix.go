//go:build unix

package pathutil

import "golang.org/x/sys/unix"

const (
	readBit  = unix.R_OK
	writeBit = unix.W_OK
)

func unixAccess(path string, mode uint32) bool {
	return unix.Access(path, mode) == nil
}
