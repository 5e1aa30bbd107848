package utf8stream

import (
	"fmt"
	"log/slog"
)

// TabWidth is the column stride used when a tab is decoded.
const TabWidth = 8

// Position represents a position within a decoded byte stream.
type Position struct {
	Offset     uint64
	Line       uint64
	Column     uint64
	SkipNextLF bool
}

// MakePosition returns the Position for the start of a stream.
func MakePosition() Position {
	return Position{Line: 1, Column: 1}
}

// Reset sets this position to the start of the stream.
func (pos *Position) Reset() {
	*pos = MakePosition()
}

// Advance updates the position, given the character found at the current
// position and the number of bytes consumed to produce it.
//
// A malformed sequence counts as one column of utf8.RuneError, however many
// bytes it spans.
//
func (pos *Position) Advance(ch rune, size int) {
	if size < 0 {
		panic("negative size")
	}
	if size == 0 {
		return
	}

	pos.Offset += uint64(size)
	switch {
	case ch == '\r':
		pos.Line++
		pos.Column = 1
		pos.SkipNextLF = true
	case ch == '\n' && pos.SkipNextLF:
		pos.SkipNextLF = false
	case ch == '\n':
		pos.Line++
		pos.Column = 1
	case ch == '\t':
		pos.Column += TabWidth - ((pos.Column - 1) % TabWidth)
		pos.SkipNextLF = false
	default:
		pos.Column++
		pos.SkipNextLF = false
	}
}

func (pos Position) String() string {
	return fmt.Sprintf("line %d column %d (byte offset %d)", pos.Line, pos.Column, pos.Offset)
}

// LogValue lets a Position be passed directly as a slog attribute.
func (pos Position) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("offset", pos.Offset),
		slog.Uint64("line", pos.Line),
		slog.Uint64("column", pos.Column),
	)
}
