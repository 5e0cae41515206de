package vecwal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaHandler_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	mh := NewMetaHandler(dir)

	applied, write, ok, err := mh.Load()
	assert.Nil(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), applied)
	assert.Equal(t, uint64(0), write)

	assert.Nil(t, mh.Store(BuildLsn(1, 10), BuildLsn(2, 20)))
	applied, write, ok, err = mh.Load()
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, BuildLsn(1, 10), applied)
	assert.Equal(t, BuildLsn(2, 20), write)

	// overwrite
	assert.Nil(t, mh.Store(BuildLsn(2, 20), BuildLsn(2, 20)))
	applied, write, ok, err = mh.Load()
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, write, applied)
}

func TestMetaHandler_CorruptChecksum(t *testing.T) {
	dir := t.TempDir()
	mh := NewMetaHandler(dir)
	assert.Nil(t, mh.Store(BuildLsn(1, 10), BuildLsn(2, 20)))

	path := filepath.Join(dir, metaFileName)
	data, err := os.ReadFile(path)
	assert.Nil(t, err)
	data[0] ^= 0xff
	assert.Nil(t, os.WriteFile(path, data, 0644))

	_, _, ok, err := mh.Load()
	assert.Nil(t, err)
	assert.False(t, ok)
}

func TestMetaHandler_Truncated(t *testing.T) {
	dir := t.TempDir()
	mh := NewMetaHandler(dir)
	path := filepath.Join(dir, metaFileName)
	assert.Nil(t, os.WriteFile(path, make([]byte, metaFileSize-1), 0644))

	_, _, ok, err := mh.Load()
	assert.Nil(t, err)
	assert.False(t, ok)
}
