//go:build !unix

package pathutil

import "os"

const (
	readBit  = 1
	writeBit = 2
)

// unixAccess falls back to a permissive stat-based check on non-unix
// platforms, where syscall.Access semantics are unavailable.
func unixAccess(path string, _ uint32) bool {
	_, err := os.Stat(path)
	return err == nil
}
