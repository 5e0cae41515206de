// Package segdir tracks the wal segment files that currently exist
// on disk, ordered by file number. The manager feeds it from the
// directory scan on open and from writer rollovers, and drains it
// when applied segments are removed.
package segdir

import (
	"github.com/google/btree"
)

// Segment is one on-disk wal file.
type Segment struct {
	FileNo uint32
	Size   int64
}

// Less orders segments by file number, which is also lsn order.
func (s *Segment) Less(than btree.Item) bool {
	return s.FileNo < than.(*Segment).FileNo
}
