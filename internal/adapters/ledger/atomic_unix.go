//go:build !windows

package ledger

import (
	"os"

	"github.com/google/renameio/v2"
)

// atomicWriteFile rewrites the ledger file atomically so a crash mid-write
// never leaves a truncated array on disk. This protects the file's
// integrity only; it does not serialize concurrent writers.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(path, data, perm)
}
