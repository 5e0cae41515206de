package codec

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RifeWang/vecwal/model"
)

func TestCodecImpl_RecordSize(t *testing.T) {
	cl := NewCodecImpl()

	record := &model.Record{Type: model.RecordFlush}
	assert.Equal(t, uint32(model.RecordHeaderSize), cl.RecordSize(record))

	record = &model.Record{
		Type:         model.RecordInsert,
		TableID:      []byte("t"),
		PartitionTag: []byte(""),
		IDs:          []uint64{42, 43},
		Data:         []byte("abcd"),
	}
	assert.Equal(t, uint32(46), cl.RecordSize(record))
}

func TestCodecImpl_MarshalRecord(t *testing.T) {
	cl := NewCodecImpl()
	record := &model.Record{
		Type:         model.RecordInsert,
		Lsn:          BuildTestLsn(3, 46),
		TableID:      []byte("t"),
		IDs:          []uint64{42, 43},
		Data:         []byte("abcd"),
	}

	buf := make([]byte, cl.RecordSize(record))
	n, err := cl.MarshalRecord(buf, record)
	assert.Nil(t, err)
	assert.Equal(t, uint32(46), n)

	// header layout
	assert.Equal(t, record.Lsn, binary.LittleEndian.Uint64(buf[0:8]))
	assert.Equal(t, byte(model.RecordInsert), buf[8])
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(buf[9:11]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[11:13]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[13:17]))
	assert.Equal(t, uint64(4), binary.LittleEndian.Uint64(buf[17:25]))

	// payload sections
	assert.Equal(t, byte('t'), buf[25])
	assert.Equal(t, uint64(42), binary.LittleEndian.Uint64(buf[26:34]))
	assert.Equal(t, uint64(43), binary.LittleEndian.Uint64(buf[34:42]))
	assert.Equal(t, []byte("abcd"), buf[42:46])
}

func TestCodecImpl_MarshalRecord_ShortBuffer(t *testing.T) {
	cl := NewCodecImpl()
	record := &model.Record{Type: model.RecordInsert, Data: []byte("abcd")}

	buf := make([]byte, cl.RecordSize(record)-1)
	_, err := cl.MarshalRecord(buf, record)
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestCodecImpl_RoundTrip(t *testing.T) {
	cl := NewCodecImpl()
	record := &model.Record{
		Type:         model.RecordDelete,
		Lsn:          BuildTestLsn(1, 99),
		TableID:      []byte("collection"),
		PartitionTag: []byte("p0"),
		IDs:          []uint64{1, 2, 3, 1 << 60},
		Data:         []byte{0x00, 0xff, 0x10},
	}

	buf := make([]byte, cl.RecordSize(record))
	_, err := cl.MarshalRecord(buf, record)
	assert.Nil(t, err)

	decoded := &model.Record{}
	n, err := cl.UnmarshalRecord(buf, decoded)
	assert.Nil(t, err)
	assert.Equal(t, cl.RecordSize(record), n)
	assert.Equal(t, record.Type, decoded.Type)
	assert.Equal(t, record.Lsn, decoded.Lsn)
	assert.Equal(t, record.TableID, decoded.TableID)
	assert.Equal(t, record.PartitionTag, decoded.PartitionTag)
	assert.Equal(t, record.IDs, decoded.IDs)
	assert.Equal(t, record.Data, decoded.Data)
}

func TestCodecImpl_UnmarshalRecord_Malformed(t *testing.T) {
	cl := NewCodecImpl()

	// truncated header
	_, err := cl.UnmarshalRecord(make([]byte, model.RecordHeaderSize-1), &model.Record{})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	// declared lengths cross the readable bound
	record := &model.Record{Type: model.RecordInsert, Data: []byte("abcd")}
	buf := make([]byte, cl.RecordSize(record))
	_, err = cl.MarshalRecord(buf, record)
	assert.Nil(t, err)
	_, err = cl.UnmarshalRecord(buf[:len(buf)-1], &model.Record{})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestCodecImpl_UnmarshalRecord_ReusesIDs(t *testing.T) {
	cl := NewCodecImpl()
	record := &model.Record{Type: model.RecordInsert, IDs: []uint64{9, 8, 7}}
	buf := make([]byte, cl.RecordSize(record))
	_, err := cl.MarshalRecord(buf, record)
	assert.Nil(t, err)

	decoded := &model.Record{IDs: make([]uint64, 0, 16)}
	_, err = cl.UnmarshalRecord(buf, decoded)
	assert.Nil(t, err)
	assert.Equal(t, []uint64{9, 8, 7}, decoded.IDs)
	assert.Equal(t, 16, cap(decoded.IDs))
}

// BuildTestLsn mirrors the lsn layout without importing the root
// package (which would cycle).
func BuildTestLsn(fileNo, offset uint32) uint64 {
	return uint64(fileNo)<<32 | uint64(offset)
}
