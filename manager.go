package vecwal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/RifeWang/vecwal/fio"
	"github.com/RifeWang/vecwal/model"
	"github.com/RifeWang/vecwal/segdir"
)

// Manager owns a wal directory: it locks it against other processes,
// bootstraps the buffer from the persisted checkpoint (or from a
// directory scan when the checkpoint is unusable), tracks which
// segments exist, and disposes of segments the applier has fully
// consumed.
//
// The single-producer / single-consumer discipline of Buffer carries
// over: one goroutine appends, one drains via Next.
type Manager struct {
	dir string

	buffer   *Buffer
	meta     *MetaHandler
	segments *segdir.Tree
	fileLock fio.FileLocker
	logger   *slog.Logger

	// writeLsn is the lsn of the latest appended record, it bounds
	// Next. appliedLsn is the applier's confirmed progress, it is
	// what the next Open will hand to Init as the start lsn.
	writeLsn   atomic.Uint64
	appliedLsn atomic.Uint64

	syncOnFlush bool
}

// Open locks dirPath and recovers the log in it, creating the
// directory when absent.
func Open(dirPath string, opts ...Option) (*Manager, error) {
	o := newOptions(opts...)

	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return nil, err
	}

	fileLock := o.fileLocker
	if fileLock == nil {
		fileLock = fio.NewFlock(dirPath)
	}
	ok, err := fileLock.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDirIsUsing
	}

	segments, err := ListSegments(dirPath)
	if err != nil {
		fileLock.Unlock()
		return nil, err
	}

	meta := NewMetaHandler(dirPath, opts...)
	appliedLsn, writeLsn, haveMeta, err := meta.Load()
	if err != nil {
		fileLock.Unlock()
		return nil, err
	}
	if !haveMeta && segments.Len() > 0 {
		// no usable checkpoint, replay everything that is on disk
		min, max := segments.Min(), segments.Max()
		appliedLsn = BuildLsn(min.FileNo, 0)
		writeLsn = BuildLsn(max.FileNo, uint32(max.Size))
		o.logger.Info("wal meta unavailable, recovered lsn range from segment scan",
			"applied", appliedLsn, "write", writeLsn)
	}

	buffer := NewBuffer(dirPath, opts...)
	if err = buffer.Init(appliedLsn, writeLsn); err != nil {
		fileLock.Unlock()
		return nil, err
	}

	m := &Manager{
		dir:         dirPath,
		buffer:      buffer,
		meta:        meta,
		segments:    segments,
		fileLock:    fileLock,
		logger:      o.logger,
		syncOnFlush: o.syncOnFlush,
	}
	m.appliedLsn.Store(appliedLsn)
	m.writeLsn.Store(writeLsn)
	return m, nil
}

// ListSegments scans dirPath for wal segment files. Files whose name
// is not a decimal file number are ignored.
func ListSegments(dirPath string) (*segdir.Tree, error) {
	paths, err := filepath.Glob(filepath.Join(dirPath, "*"+model.SegmentFileSuffix))
	if err != nil {
		return nil, err
	}

	tree := segdir.NewTree(0)
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), model.SegmentFileSuffix)
		fileNo, err := strconv.ParseUint(name, 10, 32)
		if err != nil {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		tree.Put(&segdir.Segment{FileNo: uint32(fileNo), Size: info.Size()})
	}
	return tree, nil
}

// Append writes record to the log and returns its assigned lsn.
func (m *Manager) Append(record *model.Record) (uint64, error) {
	prev := m.writeLsn.Load()
	if err := m.buffer.Append(record); err != nil {
		return 0, err
	}
	m.writeLsn.Store(record.Lsn)

	fileNo, offset := ParseLsn(record.Lsn)
	if prevFileNo, prevOffset := ParseLsn(prev); prev != 0 && fileNo > prevFileNo {
		// rollover happened, the previous segment is complete
		m.segments.Put(&segdir.Segment{FileNo: prevFileNo, Size: int64(prevOffset)})
	}
	m.segments.Put(&segdir.Segment{FileNo: fileNo, Size: int64(offset)})

	return record.Lsn, nil
}

// Flush appends a flush marker for the given table, syncs the writer
// segment and persists the checkpoint. The marker's lsn is the
// durability boundary handed back to the caller.
func (m *Manager) Flush(tableID, partitionTag []byte) (uint64, error) {
	record := &model.Record{
		Type:         model.RecordFlush,
		TableID:      tableID,
		PartitionTag: partitionTag,
	}
	lsn, err := m.Append(record)
	if err != nil {
		return 0, err
	}
	if m.syncOnFlush {
		if err = m.buffer.Sync(); err != nil {
			return 0, err
		}
	}
	if err = m.meta.Store(m.appliedLsn.Load(), lsn); err != nil {
		return 0, err
	}
	return lsn, nil
}

// Next decodes the record after the reader cursor, bounded by the
// latest appended lsn. record.Type is RecordNone when the log is
// drained.
func (m *Manager) Next(record *model.Record) error {
	return m.buffer.Next(m.writeLsn.Load(), record)
}

// UpdateAppliedLsn records the applier's confirmed progress. It does
// not touch the reader cursor; it only moves the recovery start
// point persisted at the next Flush or Close.
func (m *Manager) UpdateAppliedLsn(lsn uint64) {
	m.appliedLsn.Store(lsn)
}

// ReadLsn is the reader cursor of the underlying buffer.
func (m *Manager) ReadLsn() uint64 {
	return m.buffer.GetReadLsn()
}

// WriteLsn is the lsn of the latest appended record.
func (m *Manager) WriteLsn() uint64 {
	return m.writeLsn.Load()
}

// RemoveAppliedSegments unlinks every segment the reader has fully
// moved past and returns how many were removed.
func (m *Manager) RemoveAppliedSegments() (int, error) {
	readFileNo, _ := ParseLsn(m.buffer.GetReadLsn())

	var stale []uint32
	m.segments.Ascend(func(seg *segdir.Segment) bool {
		if seg.FileNo >= readFileNo {
			return false
		}
		stale = append(stale, seg.FileNo)
		return true
	})

	removed := 0
	for _, fileNo := range stale {
		path := filepath.Join(m.dir, ToFileName(fileNo))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		m.segments.Delete(fileNo)
		removed++
	}
	if removed > 0 {
		m.logger.Info("removed applied wal segments", "count", removed)
	}
	return removed, nil
}

// Reset discards the log and restarts it just past lsn. Both the
// checkpoint and the in-memory lsns follow.
func (m *Manager) Reset(lsn uint64) error {
	m.buffer.Reset(lsn)

	fileNo, _ := ParseLsn(m.buffer.GetReadLsn())
	fresh := BuildLsn(fileNo, 0)
	m.appliedLsn.Store(fresh)
	m.writeLsn.Store(fresh)
	m.segments.Put(&segdir.Segment{FileNo: fileNo, Size: 0})
	return m.meta.Store(fresh, fresh)
}

// Close persists the checkpoint, closes the buffer and releases the
// directory lock.
func (m *Manager) Close() error {
	err := m.meta.Store(m.appliedLsn.Load(), m.writeLsn.Load())
	if cerr := m.buffer.Close(); err == nil {
		err = cerr
	}
	if uerr := m.fileLock.Unlock(); err == nil {
		err = uerr
	}
	return err
}
