package codec

import (
	"errors"

	"github.com/RifeWang/vecwal/model"
)

// ErrMalformedRecord reports a header whose declared payload lengths
// cross the end of the readable region.
var ErrMalformedRecord = errors.New("vecwal codec err: malformed record")

// ErrShortBuffer reports a destination slice smaller than the record
// being marshaled.
var ErrShortBuffer = errors.New("vecwal codec err: buffer too small for record")

// Codec turns records into their on-disk bytes and back.
// You can plug your own implementation in options as long as it keeps
// the record self-describing: the lsn stored in the header must point
// just past the record.
type Codec interface {
	// RecordSize is the exact number of bytes MarshalRecord will
	// produce for record.
	RecordSize(record *model.Record) uint32

	// MarshalRecord writes the header and payload sections into buf.
	// record.Lsn must already be assigned. Returns the bytes
	// written.
	MarshalRecord(buf []byte, record *model.Record) (uint32, error)

	// UnmarshalRecord parses one record from the start of buf.
	// buf must end at the last readable byte; declared lengths
	// crossing it fail with ErrMalformedRecord. TableID,
	// PartitionTag and Data alias buf. IDs are decoded into
	// record.IDs, reusing its capacity. Returns the bytes consumed.
	UnmarshalRecord(buf []byte, record *model.Record) (uint32, error)
}
