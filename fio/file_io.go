package fio

import (
	"io"
	"os"
)

// FileIO is the default implement for IOManager
type FileIO struct {
	fd *os.File
}

func NewFileIO(path string, flag int) (*FileIO, error) {
	fd, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, err
	}
	return &FileIO{fd: fd}, nil
}

func (f *FileIO) Read(buf []byte, offset int64) (int, error) {
	if _, err := f.fd.Seek(offset, io.SeekStart); err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, nil
	}
	return io.ReadFull(f.fd, buf)
}

func (f *FileIO) Write(data []byte) (int, error) {
	return f.fd.Write(data)
}

func (f *FileIO) Size() (int64, error) {
	stat, err := f.fd.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

func (f *FileIO) Sync() error {
	return f.fd.Sync()
}

func (f *FileIO) Close() error {
	return f.fd.Close()
}
