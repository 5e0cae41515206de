package model

import (
	"os"
	"path/filepath"

	"github.com/RifeWang/vecwal/fio"
)

const SegmentFileSuffix = ".wal"

// OpenMode selects how a segment file is opened.
type OpenMode int

const (
	// ModeWrite opens at the start of the file, creating it when
	// absent. The file is not truncated: a reborn onto an existing
	// segment can load a prefix and keep appending past it.
	ModeWrite OpenMode = iota
	// ModeUpdate opens an existing file for read and write.
	ModeUpdate
	// ModeRead opens an existing file read-only.
	ModeRead
)

func (m OpenMode) flag() int {
	switch m {
	case ModeWrite:
		return os.O_RDWR | os.O_CREATE
	case ModeUpdate:
		return os.O_RDWR
	default:
		return os.O_RDONLY
	}
}

// SegmentFile is one wal segment bound to a directory. The file is
// opened lazily on the first Load or Write after SetName/SetMode, so
// name and mode can be staged before any io happens.
type SegmentFile struct {
	dir     string
	name    string
	mode    OpenMode
	io      fio.IOManager
	creator fio.IOManagerCreator
}

func NewSegmentFile(dir string, creator fio.IOManagerCreator) *SegmentFile {
	return &SegmentFile{dir: dir, creator: creator}
}

func (sf *SegmentFile) SetName(name string) {
	sf.name = name
}

func (sf *SegmentFile) SetMode(mode OpenMode) {
	sf.mode = mode
}

func (sf *SegmentFile) Name() string {
	return sf.name
}

func (sf *SegmentFile) Path() string {
	return filepath.Join(sf.dir, sf.name)
}

func (sf *SegmentFile) Exists() bool {
	_, err := os.Stat(sf.Path())
	return err == nil
}

func (sf *SegmentFile) Open() error {
	if sf.io != nil {
		return nil
	}
	io, err := sf.creator(sf.Path(), sf.mode.flag())
	if err != nil {
		return err
	}
	sf.io = io
	return nil
}

func (sf *SegmentFile) Close() error {
	if sf.io == nil {
		return nil
	}
	err := sf.io.Close()
	sf.io = nil
	return err
}

// Size works on unopened files as well.
func (sf *SegmentFile) Size() (int64, error) {
	if sf.io != nil {
		return sf.io.Size()
	}
	stat, err := os.Stat(sf.Path())
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

// Load reads len(dst) bytes starting at offset. The stream position
// ends just past the loaded range, so a following Write appends
// there.
func (sf *SegmentFile) Load(dst []byte, offset int64) error {
	if err := sf.Open(); err != nil {
		return err
	}
	_, err := sf.io.Read(dst, offset)
	return err
}

// Write appends data at the current stream position.
func (sf *SegmentFile) Write(data []byte) error {
	if err := sf.Open(); err != nil {
		return err
	}
	_, err := sf.io.Write(data)
	return err
}

func (sf *SegmentFile) Sync() error {
	if sf.io == nil {
		return nil
	}
	return sf.io.Sync()
}

// Reborn closes the current file and opens name in write mode as one
// logical operation. This is the segment rollover primitive.
func (sf *SegmentFile) Reborn(name string) error {
	if err := sf.Close(); err != nil {
		return err
	}
	sf.SetName(name)
	sf.SetMode(ModeWrite)
	return sf.Open()
}
