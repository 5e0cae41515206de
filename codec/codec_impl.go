package codec

import (
	"encoding/binary"

	"github.com/RifeWang/vecwal/model"
)

type CodecImpl struct{}

func NewCodecImpl() *CodecImpl {
	return &CodecImpl{}
}

var _ Codec = (*CodecImpl)(nil)

/*
default codec, little-endian:
	- header (25 bytes): lsn(8) | type(1) | tableIDSize(2) | partitionTagSize(2) | vectorNum(4) | dataSize(8)
	- payload: tableID | partitionTag | ids (vectorNum * 8) | data
	records are concatenated with no padding or separator
*/

func (cl *CodecImpl) RecordSize(record *model.Record) uint32 {
	return model.RecordHeaderSize + uint32(len(record.TableID)) + uint32(len(record.PartitionTag)) +
		uint32(len(record.IDs))*model.IDSize + uint32(len(record.Data))
}

func (cl *CodecImpl) MarshalRecord(buf []byte, record *model.Record) (uint32, error) {
	size := cl.RecordSize(record)
	if uint32(len(buf)) < size {
		return 0, ErrShortBuffer
	}

	binary.LittleEndian.PutUint64(buf[0:8], record.Lsn)
	buf[8] = byte(record.Type)
	binary.LittleEndian.PutUint16(buf[9:11], uint16(len(record.TableID)))
	binary.LittleEndian.PutUint16(buf[11:13], uint16(len(record.PartitionTag)))
	binary.LittleEndian.PutUint32(buf[13:17], uint32(len(record.IDs)))
	binary.LittleEndian.PutUint64(buf[17:25], uint64(len(record.Data)))

	idx := uint32(model.RecordHeaderSize)
	idx += uint32(copy(buf[idx:], record.TableID))
	idx += uint32(copy(buf[idx:], record.PartitionTag))
	for _, id := range record.IDs {
		binary.LittleEndian.PutUint64(buf[idx:idx+model.IDSize], id)
		idx += model.IDSize
	}
	idx += uint32(copy(buf[idx:], record.Data))

	return idx, nil
}

func (cl *CodecImpl) UnmarshalRecord(buf []byte, record *model.Record) (uint32, error) {
	if len(buf) < model.RecordHeaderSize {
		return 0, ErrMalformedRecord
	}

	var header model.RecordHeader
	header.Lsn = binary.LittleEndian.Uint64(buf[0:8])
	header.Type = model.RecordType(buf[8])
	header.TableIDSize = binary.LittleEndian.Uint16(buf[9:11])
	header.PartitionTagSize = binary.LittleEndian.Uint16(buf[11:13])
	header.VectorNum = binary.LittleEndian.Uint32(buf[13:17])
	header.DataSize = binary.LittleEndian.Uint64(buf[17:25])

	size := uint64(model.RecordHeaderSize) + uint64(header.TableIDSize) + uint64(header.PartitionTagSize) +
		uint64(header.VectorNum)*model.IDSize + header.DataSize
	if size > uint64(len(buf)) {
		return 0, ErrMalformedRecord
	}

	record.Lsn = header.Lsn
	record.Type = header.Type

	idx := uint32(model.RecordHeaderSize)
	record.TableID = buf[idx : idx+uint32(header.TableIDSize)]
	idx += uint32(header.TableIDSize)
	record.PartitionTag = buf[idx : idx+uint32(header.PartitionTagSize)]
	idx += uint32(header.PartitionTagSize)

	record.IDs = record.IDs[:0]
	for i := uint32(0); i < header.VectorNum; i++ {
		record.IDs = append(record.IDs, binary.LittleEndian.Uint64(buf[idx:idx+model.IDSize]))
		idx += model.IDSize
	}

	record.Data = buf[idx : idx+uint32(header.DataSize)]
	idx += uint32(header.DataSize)

	return idx, nil
}
