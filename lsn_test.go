package vecwal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildParseLsn(t *testing.T) {
	lsn := BuildLsn(7, 4096)
	fileNo, offset := ParseLsn(lsn)
	assert.Equal(t, uint32(7), fileNo)
	assert.Equal(t, uint32(4096), offset)

	lsn = BuildLsn(0, 0)
	assert.Equal(t, uint64(0), lsn)

	lsn = BuildLsn(1<<32-1, 1<<32-1)
	fileNo, offset = ParseLsn(lsn)
	assert.Equal(t, uint32(1<<32-1), fileNo)
	assert.Equal(t, uint32(1<<32-1), offset)
}

func TestLsnOrdering(t *testing.T) {
	// offsets reset at each new file, plain unsigned comparison
	// still follows (fileNo, offset) order
	assert.Less(t, BuildLsn(0, 1<<32-1), BuildLsn(1, 0))
	assert.Less(t, BuildLsn(1, 0), BuildLsn(1, 1))
	assert.Less(t, BuildLsn(1, 1<<32-1), BuildLsn(2, 0))
}

func TestToFileName(t *testing.T) {
	assert.Equal(t, "0.wal", ToFileName(0))
	assert.Equal(t, "42.wal", ToFileName(42))
	assert.Equal(t, "4294967295.wal", ToFileName(1<<32-1))
}
