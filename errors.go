package vecwal

import (
	"fmt"
)

var (
	ErrInvalidLsnRange = addPrefix("start lsn is greater than end lsn")
	ErrRecordTooLarge  = addPrefix("record is larger than the whole buffer")
	ErrSegmentMissing  = addPrefix("wal segment is missing or empty")
	ErrSegmentTooLarge = addPrefix("wal segment is larger than the buffer")
	ErrWalFile         = addPrefix("wal file operation failed")

	ErrDirIsUsing = addPrefix("wal directory is used by another process")
)

func addPrefix(errStr string) error {
	return fmt.Errorf("vecwal err: %s", errStr)
}
