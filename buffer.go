package vecwal

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/RifeWang/vecwal/codec"
	"github.com/RifeWang/vecwal/fio"
	"github.com/RifeWang/vecwal/model"
)

type writerCursor struct {
	fileNo uint32
	bufIdx int
	// offset is atomic: released by the writer after the record
	// bytes land in the buffer, acquired by the reader before it
	// decodes in the shared-buffer state.
	offset atomic.Uint32
}

type readerCursor struct {
	fileNo uint32
	bufIdx int
	offset uint32
	// maxOffset marks end-of-valid-bytes in the reader buffer. Only
	// meaningful while the reader lags the writer by at least one
	// file, then it equals the byte length of the reader's file.
	maxOffset uint32
}

// Buffer is a double-buffered window over a sequence of wal segment
// files. A single producer appends records, a single consumer reads
// them back in lsn order; multiple producers or consumers must
// serialize externally.
//
// While reader and writer share a file they share a buffer and
// synchronize on the writer offset alone. Once the writer rolls over
// to a new segment the two occupy distinct buffers, the reader drains
// its file up to maxOffset, then loads the next segment or re-joins
// the writer's buffer. mu protects exactly that transition (the
// bufIdx pair and maxOffset) and is never held across file io.
type Buffer struct {
	mu sync.Mutex

	size uint32
	buf  [2][]byte

	reader readerCursor
	writer writerCursor

	writerFile *model.SegmentFile

	dir     string
	codec   codec.Codec
	creator fio.IOManagerCreator
	logger  *slog.Logger
}

// NewBuffer prepares a buffer over dirPath. No allocation or file io
// happens until Init or Reset.
func NewBuffer(dirPath string, opts ...Option) *Buffer {
	o := newOptions(opts...)

	size := o.bufferSize
	if size < MinBufferSize {
		o.logger.Info("config wal buffer size is too small", "configured", o.bufferSize, "min", MinBufferSize)
		size = MinBufferSize
	} else if size > MaxBufferSize {
		o.logger.Info("config wal buffer size is too large", "configured", o.bufferSize, "max", MaxBufferSize)
		size = MaxBufferSize
	}

	return &Buffer{
		size:       size,
		dir:        dirPath,
		codec:      o.codec,
		creator:    o.ioManagerCreator,
		logger:     o.logger,
		writerFile: model.NewSegmentFile(dirPath, o.ioManagerCreator),
	}
}

// Size is the current capacity of each of the two buffers.
func (b *Buffer) Size() uint32 {
	return b.size
}

// SurplusSpace is what the writer can still append to the current
// segment without a rollover.
func (b *Buffer) SurplusSpace() uint32 {
	return b.size - b.writer.offset.Load()
}

// RecordSize is the on-disk size record will occupy.
func (b *Buffer) RecordSize(record *model.Record) uint32 {
	return b.codec.RecordSize(record)
}

// Init places both cursors from a persisted (startLsn, endLsn) pair
// and reloads buffer state from the segment files in between. With
// startLsn == endLsn there is nothing to recover; a nonzero offset
// then advances both cursors to a fresh segment.
func (b *Buffer) Init(startLsn, endLsn uint64) error {
	if startLsn > endLsn {
		return ErrInvalidLsnRange
	}

	b.reader.fileNo, b.reader.offset = ParseLsn(startLsn)
	var woff uint32
	b.writer.fileNo, woff = ParseLsn(endLsn)

	if startLsn == endLsn {
		if woff != 0 {
			b.writer.fileNo++
			woff = 0
			b.reader.fileNo++
			b.reader.offset = 0
		}
	} else {
		// every segment between the cursors must fit in a buffer
		probe := model.NewSegmentFile(b.dir, b.creator)
		var need uint32
		for i := b.reader.fileNo; i < b.writer.fileNo; i++ {
			probe.SetName(ToFileName(i))
			size, err := probe.Size()
			if err != nil || size == 0 {
				b.logger.Error("bad wal segment", "file", ToFileName(i))
				return fmt.Errorf("%w: %s", ErrSegmentMissing, ToFileName(i))
			}
			if uint32(size) > need {
				need = uint32(size)
			}
		}
		if woff > need {
			need = woff
		}
		if need > b.size {
			b.logger.Info("recovery needs a larger wal buffer", "old", b.size, "new", need)
			b.size = need
		}
	}

	b.buf[0] = make([]byte, b.size)
	b.buf[1] = make([]byte, b.size)

	if b.reader.fileNo == b.writer.fileNo {
		// reader and writer share buffer 0
		b.reader.bufIdx = 0
		b.reader.maxOffset = 0
		b.writer.bufIdx = 0

		b.writerFile.SetName(ToFileName(b.writer.fileNo))
		if woff == 0 {
			b.writerFile.SetMode(model.ModeWrite)
		} else {
			b.writerFile.SetMode(model.ModeUpdate)
			if !b.writerFile.Exists() {
				b.logger.Error("wal segment not exist", "file", b.writerFile.Name())
				return fmt.Errorf("%w: %s", ErrSegmentMissing, b.writerFile.Name())
			}
			if err := b.writerFile.Load(b.buf[0][b.reader.offset:woff], int64(b.reader.offset)); err != nil {
				b.logger.Error("load wal segment error", "file", b.writerFile.Name(), "err", err)
				return fmt.Errorf("%w: %v", ErrWalFile, err)
			}
		}
	} else {
		// reader buffer
		b.reader.bufIdx = 0

		readerFile := model.NewSegmentFile(b.dir, b.creator)
		readerFile.SetName(ToFileName(b.reader.fileNo))
		readerFile.SetMode(model.ModeRead)
		if !readerFile.Exists() {
			b.logger.Error("wal segment not exist", "file", readerFile.Name())
			return fmt.Errorf("%w: %s", ErrSegmentMissing, readerFile.Name())
		}
		size, err := readerFile.Size()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWalFile, err)
		}
		b.reader.maxOffset = uint32(size)
		if err = readerFile.Load(b.buf[0][b.reader.offset:b.reader.maxOffset], int64(b.reader.offset)); err != nil {
			readerFile.Close()
			b.logger.Error("load wal segment error", "file", readerFile.Name(), "err", err)
			return fmt.Errorf("%w: %v", ErrWalFile, err)
		}
		readerFile.Close()

		// writer buffer
		b.writer.bufIdx = 1

		b.writerFile.SetName(ToFileName(b.writer.fileNo))
		b.writerFile.SetMode(model.ModeUpdate)
		if !b.writerFile.Exists() {
			b.logger.Error("wal segment not exist", "file", b.writerFile.Name())
			return fmt.Errorf("%w: %s", ErrSegmentMissing, b.writerFile.Name())
		}
		if err = b.writerFile.Load(b.buf[1][:woff], 0); err != nil {
			b.logger.Error("load wal segment error", "file", b.writerFile.Name(), "err", err)
			return fmt.Errorf("%w: %v", ErrWalFile, err)
		}
	}

	b.writer.offset.Store(woff)
	return nil
}

// Reset discards all buffered state and starts writing a fresh
// segment at lsn. A nonzero offset advances to the next file. The
// reader is set equal to the writer. Used after an external log
// discard.
func (b *Buffer) Reset(lsn uint64) {
	b.buf[0] = make([]byte, b.size)
	b.buf[1] = make([]byte, b.size)

	fileNo, offset := ParseLsn(lsn)
	if offset != 0 {
		fileNo++
		offset = 0
	}

	b.writer.fileNo = fileNo
	b.writer.bufIdx = 0
	b.writer.offset.Store(offset)

	b.reader.fileNo = fileNo
	b.reader.offset = offset
	b.reader.bufIdx = 0
	b.reader.maxOffset = 0

	b.writerFile.Close()
	b.writerFile.SetName(ToFileName(fileNo))
	b.writerFile.SetMode(model.ModeWrite)
	if err := b.writerFile.Open(); err != nil {
		b.logger.Error("open wal segment error", "file", b.writerFile.Name(), "err", err)
	}
}

// Append assigns the next lsn to record, encodes it into the writer
// buffer and appends the same bytes to the current segment file.
// When the buffer cannot hold the record the writer first rolls over
// to a new segment. On a failed write the cursor is not advanced, so
// the same append can be retried.
func (b *Buffer) Append(record *model.Record) error {
	recordSize := b.codec.RecordSize(record)
	if recordSize > b.size {
		return ErrRecordTooLarge
	}

	if b.SurplusSpace() < recordSize {
		b.mu.Lock()
		if b.writer.bufIdx == b.reader.bufIdx {
			// reader still drains the old file, pin it there and
			// migrate the writer to the other buffer
			b.reader.maxOffset = b.writer.offset.Load()
			b.writer.bufIdx ^= 1
		}
		b.writer.fileNo++
		b.writer.offset.Store(0)
		b.mu.Unlock()

		if err := b.writerFile.Reborn(ToFileName(b.writer.fileNo)); err != nil {
			b.logger.Error("reborn wal segment error", "file", ToFileName(b.writer.fileNo), "err", err)
			return fmt.Errorf("%w: %v", ErrWalFile, err)
		}
	}

	woff := b.writer.offset.Load()
	record.Lsn = BuildLsn(b.writer.fileNo, woff+recordSize)

	dst := b.buf[b.writer.bufIdx][woff : woff+recordSize]
	if _, err := b.codec.MarshalRecord(dst, record); err != nil {
		return err
	}

	if err := b.writerFile.Write(dst); err != nil {
		b.logger.Error("write wal segment error", "file", b.writerFile.Name(), "err", err)
		return fmt.Errorf("%w: %v", ErrWalFile, err)
	}

	b.writer.offset.Store(woff + recordSize)
	return nil
}

// Next advances the reader past the record at its cursor and decodes
// it into record. lastAppliedLsn bounds how far the reader may go;
// when no record is available Next returns nil with record.Type ==
// RecordNone. Payload slices alias the reader buffer and stay valid
// only until the next call to Next or Append.
func (b *Buffer) Next(lastAppliedLsn uint64, record *model.Record) error {
	record.Type = model.RecordNone

	// reader caught up to the writer, no next record
	if b.GetReadLsn() >= lastAppliedLsn {
		return nil
	}

	needLoadNew := false
	b.mu.Lock()
	if b.reader.fileNo != b.writer.fileNo && b.reader.offset == b.reader.maxOffset {
		// current reader segment is exhausted
		b.reader.fileNo++
		b.reader.offset = 0
		needLoadNew = b.reader.fileNo != b.writer.fileNo
		if !needLoadNew {
			// reader reached the write buffer
			b.reader.bufIdx = b.writer.bufIdx
		}
	}
	shared := b.reader.fileNo == b.writer.fileNo
	b.mu.Unlock()

	if needLoadNew {
		readerFile := model.NewSegmentFile(b.dir, b.creator)
		readerFile.SetName(ToFileName(b.reader.fileNo))
		readerFile.SetMode(model.ModeRead)
		size, err := readerFile.Size()
		if err != nil {
			b.logger.Error("read wal segment error", "file", readerFile.Name(), "err", err)
			return fmt.Errorf("%w: %v", ErrWalFile, err)
		}
		if uint32(size) > b.size {
			return fmt.Errorf("%w: %s", ErrSegmentTooLarge, readerFile.Name())
		}
		if err = readerFile.Load(b.buf[b.reader.bufIdx][:size], 0); err != nil {
			readerFile.Close()
			b.logger.Error("load wal segment error", "file", readerFile.Name(), "err", err)
			return fmt.Errorf("%w: %v", ErrWalFile, err)
		}
		readerFile.Close()
		b.reader.maxOffset = uint32(size)
	}

	bound := b.reader.maxOffset
	if shared {
		bound = b.writer.offset.Load()
	}

	src := b.buf[b.reader.bufIdx][b.reader.offset:bound]
	if _, err := b.codec.UnmarshalRecord(src, record); err != nil {
		record.Type = model.RecordNone
		return err
	}

	// the header lsn already encodes the post-record offset
	b.reader.offset = uint32(record.Lsn & LsnOffsetMask)
	return nil
}

// GetReadLsn is the reader cursor as a lsn.
func (b *Buffer) GetReadLsn() uint64 {
	return BuildLsn(b.reader.fileNo, b.reader.offset)
}

// SetWriteLsn moves the writer to an externally chosen position.
// Within the current file this is a pure in-buffer rewind. Moving
// onto the reader's file only re-joins the reader's buffer; the open
// segment file is not switched. Onto any other file the writer
// reopens the named segment and reloads its prefix so subsequent
// appends extend it.
func (b *Buffer) SetWriteLsn(lsn uint64) error {
	oldFileNo := b.writer.fileNo
	fileNo, offset := ParseLsn(lsn)

	b.mu.Lock()
	b.writer.fileNo = fileNo
	b.writer.offset.Store(offset)
	if oldFileNo == fileNo {
		b.mu.Unlock()
		return nil
	}
	if fileNo == b.reader.fileNo {
		b.writer.bufIdx = b.reader.bufIdx
		b.mu.Unlock()
		return nil
	}
	b.mu.Unlock()

	if err := b.writerFile.Reborn(ToFileName(fileNo)); err != nil {
		b.logger.Error("reborn wal segment error", "file", ToFileName(fileNo), "err", err)
		return fmt.Errorf("%w: %v", ErrWalFile, err)
	}
	if err := b.writerFile.Load(b.buf[b.writer.bufIdx][:offset], 0); err != nil {
		b.logger.Error("load wal segment error", "file", b.writerFile.Name(), "err", err)
		return fmt.Errorf("%w: %v", ErrWalFile, err)
	}
	return nil
}

// Sync flushes the current writer segment to disk.
func (b *Buffer) Sync() error {
	return b.writerFile.Sync()
}

// Close releases the buffers and closes the writer segment.
func (b *Buffer) Close() error {
	b.buf[0], b.buf[1] = nil, nil
	return b.writerFile.Close()
}
