package vecwal

import (
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/RifeWang/vecwal/utils"
)

const (
	metaFileName    = "wal.meta"
	metaTmpFileName = "wal.meta.tmp"

	// appliedLsn(8) + writeLsn(8) + crc(4), little-endian
	metaFileSize = 20
)

// MetaHandler persists the (appliedLsn, writeLsn) checkpoint pair in
// the log directory. The pair is what Init is later called with; a
// missing or corrupted meta file is not fatal, recovery then falls
// back to scanning the segment files.
type MetaHandler struct {
	dir    string
	logger *slog.Logger
}

func NewMetaHandler(dir string, opts ...Option) *MetaHandler {
	o := newOptions(opts...)
	return &MetaHandler{dir: dir, logger: o.logger}
}

func (mh *MetaHandler) path() string {
	return filepath.Join(mh.dir, metaFileName)
}

// Load reads the checkpoint pair. ok is false when the meta file is
// absent, short or fails its checksum; the returned lsns are zero
// then.
func (mh *MetaHandler) Load() (appliedLsn, writeLsn uint64, ok bool, err error) {
	data, err := os.ReadFile(mh.path())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}
	if len(data) < metaFileSize {
		mh.logger.Warn("wal meta file is truncated", "size", len(data))
		return 0, 0, false, nil
	}

	crc := binary.LittleEndian.Uint32(data[16:20])
	if !utils.CheckCrc(crc, data[:16]) {
		mh.logger.Warn("wal meta file checksum mismatch")
		return 0, 0, false, nil
	}

	appliedLsn = binary.LittleEndian.Uint64(data[0:8])
	writeLsn = binary.LittleEndian.Uint64(data[8:16])
	return appliedLsn, writeLsn, true, nil
}

// Store writes the checkpoint pair through a temp file and a rename.
func (mh *MetaHandler) Store(appliedLsn, writeLsn uint64) error {
	data := make([]byte, metaFileSize)
	binary.LittleEndian.PutUint64(data[0:8], appliedLsn)
	binary.LittleEndian.PutUint64(data[8:16], writeLsn)
	binary.LittleEndian.PutUint32(data[16:20], utils.GenerateCrc(data[:16]))

	tmp := filepath.Join(mh.dir, metaTmpFileName)
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, mh.path())
}
