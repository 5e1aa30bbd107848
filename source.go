package utf8stream

import (
	"bytes"
	"context"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ByteSource is anything that can yield the next byte of a stream.
//
// ReadByte blocks until a byte is available. It returns io.EOF when the
// stream is exhausted; any other error is treated as a failure of the source
// and is handed back to the caller unchanged.
//
// *bytes.Reader, *strings.Reader and *bufio.Reader are all ByteSources.
type ByteSource interface {
	ReadByte() (byte, error)
}

// ByteSourceFunc adapts an ordinary function to the ByteSource interface.
type ByteSourceFunc func() (byte, error)

// ReadByte fulfills the ByteSource interface.
func (fn ByteSourceFunc) ReadByte() (byte, error) { return fn() }

// FromBytes returns a ByteSource over an in-memory buffer.
func FromBytes(p []byte) ByteSource {
	return bytes.NewReader(p)
}

// FromReader returns a ByteSource for r.
//
// If r already implements io.ByteReader it is returned as is. Otherwise each
// ReadByte becomes one Read of a single byte; wrap r in a *bufio.Reader first
// if that is too slow.
//
func FromReader(r io.Reader) ByteSource {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &readerSource{r: r}
}

type readerSource struct {
	r   io.Reader
	buf [1]byte
}

func (src *readerSource) ReadByte() (byte, error) {
	if _, err := io.ReadFull(src.r, src.buf[:]); err != nil {
		return 0, err
	}
	return src.buf[0], nil
}

// WithContext returns a ByteSource that fails with ctx.Err() once ctx is
// done. The check happens before every byte, so a read that is already
// blocked inside src is not interrupted.
func WithContext(ctx context.Context, src ByteSource) ByteSource {
	return &contextSource{ctx: ctx, src: src}
}

type contextSource struct {
	ctx context.Context
	src ByteSource
}

func (cs *contextSource) ReadByte() (byte, error) {
	if err := cs.ctx.Err(); err != nil {
		return 0, err
	}
	return cs.src.ReadByte()
}

// FromEncoding returns a ByteSource that yields the UTF-8 form of r, which
// holds text in the legacy charset e (for example charmap.ISO8859_1 or
// unicode.UTF16).
func FromEncoding(r io.Reader, e encoding.Encoding) ByteSource {
	return FromReader(transform.NewReader(r, e.NewDecoder()))
}
