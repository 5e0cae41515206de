package vecwal

import (
	"log/slog"

	"github.com/RifeWang/vecwal/codec"
	"github.com/RifeWang/vecwal/fio"
)

const (
	// MinBufferSize and MaxBufferSize clamp the configured buffer
	// capacity. Recovery may still grow past the configured value
	// when an on-disk segment is larger.
	MinBufferSize uint32 = 1 << 20
	MaxBufferSize uint32 = 2 << 30

	DefaultBufferSize uint32 = 32 << 20
)

type options struct {
	bufferSize uint32

	codec            codec.Codec
	ioManagerCreator fio.IOManagerCreator
	fileLocker       fio.FileLocker
	logger           *slog.Logger

	syncOnFlush bool
}

type Option func(*options)

func newOptions(opts ...Option) *options {
	o := &options{
		bufferSize:       DefaultBufferSize,
		codec:            codec.NewCodecImpl(),
		ioManagerCreator: defaultIOManagerCreator,
		logger:           slog.Default(),
		syncOnFlush:      true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var defaultIOManagerCreator fio.IOManagerCreator = func(path string, flag int) (fio.IOManager, error) {
	return fio.NewFileIO(path, flag)
}

// WithBufferSize sets the desired capacity of each of the two log
// buffers. Clamped to [MinBufferSize, MaxBufferSize].
func WithBufferSize(size uint32) Option {
	return func(o *options) {
		o.bufferSize = size
	}
}

// WithCodec swaps the record codec.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithIOManagerCreator swaps how segment files are opened.
func WithIOManagerCreator(fn fio.IOManagerCreator) Option {
	return func(o *options) {
		o.ioManagerCreator = fn
	}
}

// WithFileLocker swaps the directory lock taken by Open.
func WithFileLocker(l fio.FileLocker) Option {
	return func(o *options) {
		o.fileLocker = l
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSyncOnFlush controls whether Flush fsyncs the writer segment
// before the meta checkpoint is stored.
func WithSyncOnFlush(sync bool) Option {
	return func(o *options) {
		o.syncOnFlush = sync
	}
}
