package vecwal

import (
	"strconv"

	"github.com/RifeWang/vecwal/model"
)

// LsnOffsetMask selects the in-file offset half of a lsn.
const LsnOffsetMask uint64 = 0xFFFFFFFF

// BuildLsn packs a segment file number and a byte offset into a lsn.
// The high 32 bits carry the file number, the low 32 bits the offset,
// so unsigned comparison on lsns matches (fileNo, offset) order.
func BuildLsn(fileNo, offset uint32) uint64 {
	return uint64(fileNo)<<32 | uint64(offset)
}

// ParseLsn is the inverse of BuildLsn.
func ParseLsn(lsn uint64) (fileNo, offset uint32) {
	return uint32(lsn >> 32), uint32(lsn & LsnOffsetMask)
}

// ToFileName renders the segment file name for a file number.
func ToFileName(fileNo uint32) string {
	return strconv.FormatUint(uint64(fileNo), 10) + model.SegmentFileSuffix
}
