package fio

// IOManager is the raw file abstraction under a wal segment.
// Implementations can be swapped in options, tests inject failing
// ones.
//
// Read positions the stream at offset before reading, and leaves it
// just past the bytes read. Write continues at the current stream
// position. Loading a prefix and then appending therefore needs no
// explicit seek in between.
type IOManager interface {
	Read(buf []byte, offset int64) (int, error)
	Write(data []byte) (int, error)
	Size() (int64, error)
	Sync() error
	Close() error
}

// IOManagerCreator opens the file backing one wal segment.
// flag is the os.OpenFile flag set chosen by the segment open mode.
type IOManagerCreator func(path string, flag int) (IOManager, error)

// FileLocker guards a wal directory against concurrent processes.
type FileLocker interface {
	TryLock() (bool, error)
	Unlock() error
}
