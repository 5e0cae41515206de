package fio

import (
	"path/filepath"

	"github.com/gofrs/flock"
)

const flockName = "wal.flock"

// NewFlock locks a wal directory for a single owning process.
// *flock.Flock satisfies FileLocker.
func NewFlock(dirPath string) *flock.Flock {
	return flock.New(filepath.Join(dirPath, flockName))
}
