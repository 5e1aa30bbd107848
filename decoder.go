package utf8stream

import (
	"io"
	"iter"
	"unicode/utf8"
)

// Decoder reads UTF-8 from a ByteSource one code point at a time.
//
// Each call to ReadRune pulls only the bytes that belong to the next
// sequence, so a Decoder never reads ahead of what it returns. A Decoder is
// not safe for concurrent use.
//
type Decoder struct {
	// src is the byte stream to read.
	src ByteSource

	// pos is the position of the next unread byte of src.
	pos Position

	// seq holds the bytes of the sequence being decoded.
	seq [utf8.UTFMax]byte
}

var _ io.RuneReader = (*Decoder)(nil)

// NewDecoder constructs a new Decoder reading from src.
//
// "NewDecoder(src)" is exactly equivalent to allocating a zero-valued Decoder
// and calling "Init(src)" on it.
//
func NewDecoder(src ByteSource) *Decoder {
	d := new(Decoder)
	d.Init(src)
	return d
}

// Init binds this Decoder to src and rewinds its position to the start.
func (d *Decoder) Init(src ByteSource) {
	d.src = src
	d.pos.Reset()
}

// Position returns the position of the next unread byte.
func (d *Decoder) Position() Position {
	return d.pos
}

// lead classifies the first byte of a sequence. It returns the sequence
// length, the payload bits of b, and the smallest value a sequence of that
// length may encode. A length of 0 means b cannot start a sequence.
func lead(b byte) (size int, seed rune, floor rune) {
	switch {
	case b&0x80 == 0x00:
		return 1, rune(b), 0
	case b&0xe0 == 0xc0:
		return 2, rune(b & 0x1f), 0x80
	case b&0xf0 == 0xe0:
		return 3, rune(b & 0x0f), 0x800
	case b&0xf8 == 0xf0:
		return 4, rune(b & 0x07), 0x10000
	default:
		return 0, 0, 0
	}
}

// ReadRune decodes the next code point from the stream and returns it along
// with the number of bytes consumed.
//
// At the end of the stream, ReadRune returns (0, 0, io.EOF). A malformed
// sequence yields utf8.RuneError, the count of bytes consumed (at least one)
// and a *DecodeError. A failure of the ByteSource is returned unchanged.
// Every return leaves the Decoder ready to start a fresh sequence at the
// next unread byte.
//
func (d *Decoder) ReadRune() (rune, int, error) {
	start := d.pos

	b, err := d.src.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	d.seq[0] = b

	size, r, floor := lead(b)
	switch {
	case size == 0:
		return d.reject(ErrInvalidLead, start, 1)
	case size == 1:
		d.pos.Advance(r, 1)
		return r, 1, nil
	case b == 0xc0 || b == 0xc1:
		// Both can only encode values below 0x80.
		return d.reject(ErrOverlong, start, 1)
	}

	for n := 1; n < size; n++ {
		b, err = d.src.ReadByte()
		if err == io.EOF {
			return d.reject(ErrTruncated, start, n)
		}
		if err != nil {
			d.pos.Advance(utf8.RuneError, n)
			return utf8.RuneError, n, err
		}
		d.seq[n] = b
		if b&0xc0 != 0x80 {
			return d.reject(ErrInvalidContinuation, start, n+1)
		}
		r = r<<6 | rune(b&0x3f)
	}

	switch {
	case r < floor:
		return d.reject(ErrOverlong, start, size)
	case r >= 0xd800 && r <= 0xdfff:
		return d.reject(ErrSurrogate, start, size)
	case r > utf8.MaxRune:
		return d.reject(ErrOutOfRange, start, size)
	}
	d.pos.Advance(r, size)
	return r, size, nil
}

// reject accounts for the n bytes of a failed sequence that began at start.
func (d *Decoder) reject(kind Kind, start Position, n int) (rune, int, error) {
	d.pos.Advance(utf8.RuneError, n)
	return utf8.RuneError, n, &DecodeError{
		Kind:  kind,
		Pos:   start,
		Bytes: append([]byte(nil), d.seq[:n]...),
	}
}

// Runes returns the remaining code points of the stream as a sequence.
//
// The sequence ends quietly at io.EOF. Malformed input is handled according
// to p. A failure of the ByteSource is yielded with a zero rune and ends the
// sequence. Breaking out of the loop early is safe; only the bytes already
// decoded have been consumed, and a later call to Runes or ReadRune picks up
// where it stopped.
//
func (d *Decoder) Runes(p Policy) iter.Seq2[rune, error] {
	return func(yield func(rune, error) bool) {
		for {
			r, _, err := d.ReadRune()
			if err == io.EOF {
				return
			}
			if err != nil {
				var skip, final bool
				r, err, skip, final = p.resolve(err)
				if skip {
					continue
				}
				if final {
					yield(r, err)
					return
				}
			}
			if !yield(r, err) {
				return
			}
		}
	}
}
