package model

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RifeWang/vecwal/fio"
)

var testCreator fio.IOManagerCreator = func(path string, flag int) (fio.IOManager, error) {
	return fio.NewFileIO(path, flag)
}

func TestSegmentFile_WriteMode(t *testing.T) {
	dir := t.TempDir()
	sf := NewSegmentFile(dir, testCreator)
	sf.SetName("0.wal")
	sf.SetMode(ModeWrite)

	assert.False(t, sf.Exists())
	assert.Nil(t, sf.Write([]byte("record")))
	assert.True(t, sf.Exists())

	size, err := sf.Size()
	assert.Nil(t, err)
	assert.Equal(t, int64(6), size)
	assert.Nil(t, sf.Sync())
	assert.Nil(t, sf.Close())
}

func TestSegmentFile_UpdateModeRequiresFile(t *testing.T) {
	dir := t.TempDir()
	sf := NewSegmentFile(dir, testCreator)
	sf.SetName("7.wal")
	sf.SetMode(ModeUpdate)

	assert.False(t, sf.Exists())
	assert.NotNil(t, sf.Open())
}

func TestSegmentFile_LoadThenAppend(t *testing.T) {
	dir := t.TempDir()

	sf := NewSegmentFile(dir, testCreator)
	sf.SetName("0.wal")
	sf.SetMode(ModeWrite)
	assert.Nil(t, sf.Write([]byte("prefixgarbage")))
	assert.Nil(t, sf.Close())

	// reopen for update, load the prefix, keep appending past it
	sf = NewSegmentFile(dir, testCreator)
	sf.SetName("0.wal")
	sf.SetMode(ModeUpdate)
	prefix := make([]byte, 6)
	assert.Nil(t, sf.Load(prefix, 0))
	assert.Equal(t, []byte("prefix"), prefix)
	assert.Nil(t, sf.Write([]byte("MORE")))
	assert.Nil(t, sf.Close())

	data, err := os.ReadFile(sf.Path())
	assert.Nil(t, err)
	assert.Equal(t, []byte("prefixMOREage"), data)
}

func TestSegmentFile_Reborn(t *testing.T) {
	dir := t.TempDir()
	sf := NewSegmentFile(dir, testCreator)
	sf.SetName("0.wal")
	sf.SetMode(ModeWrite)
	assert.Nil(t, sf.Write([]byte("first")))

	assert.Nil(t, sf.Reborn("1.wal"))
	assert.Equal(t, "1.wal", sf.Name())
	assert.Nil(t, sf.Write([]byte("second")))
	assert.Nil(t, sf.Close())

	data, err := os.ReadFile(sf.Path())
	assert.Nil(t, err)
	assert.Equal(t, []byte("second"), data)

	// reborn onto an existing file keeps its bytes
	assert.Nil(t, sf.Reborn("0.wal"))
	size, err := sf.Size()
	assert.Nil(t, err)
	assert.Equal(t, int64(5), size)
	assert.Nil(t, sf.Close())
}

func TestSegmentFile_SizeUnopened(t *testing.T) {
	dir := t.TempDir()
	sf := NewSegmentFile(dir, testCreator)
	sf.SetName("3.wal")

	_, err := sf.Size()
	assert.NotNil(t, err)

	assert.Nil(t, os.WriteFile(sf.Path(), make([]byte, 99), 0644))
	size, err := sf.Size()
	assert.Nil(t, err)
	assert.Equal(t, int64(99), size)
}
