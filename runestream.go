package utf8stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Options holds configurable parameters for a RuneStream.
type Options struct {
	// Policy decides what happens to malformed sequences.
	//
	// Default is Report.
	//
	Policy Policy

	// Logger receives a Debug record for every malformed sequence that
	// Policy hides from the caller (Skip and Replace).
	//
	// Default is to log nothing.
	//
	Logger *slog.Logger
}

// RuneStream is an engine for lexing runes from a byte stream.
type RuneStream struct {
	// d decodes the byte stream.
	d Decoder

	// policy is the Policy to use.
	policy Policy

	// log is the Logger to use, or nil.
	log *slog.Logger

	// buf is the list of savedRunes that have been read from d.
	buf []savedRune

	// curr is the savedRune in buf that the caller is working on.
	curr *savedRune

	// end is the savedRune that terminated the stream, once one has.
	end *savedRune

	// gen is the generation number, incremented on each Commit().
	gen uint

	// spec is the speculative read count, which is an index into buf.
	spec uint
}

// savedRune represents a single result read from the Decoder.
type savedRune struct {
	pos   Position
	value rune
	size  int
	err   error
	final bool
}

// SavePoint is a snapshot of a stream position.
type SavePoint struct {
	gen  uint
	spec uint
}

// New constructs a new RuneStream.
//
// "New(src, o)" is exactly equivalent to allocating a zero-valued RuneStream
// and calling "Init(src, o)" on it.
//
func New(src ByteSource, o Options) *RuneStream {
	stream := new(RuneStream)
	stream.Init(src, o)
	return stream
}

// Init initializes this RuneStream with the given ByteSource and Options.
func (stream *RuneStream) Init(src ByteSource, o Options) {
	if int(o.Policy) >= len(policyNames) {
		panic("invalid Policy")
	}

	stream.d.Init(src)
	stream.policy = o.Policy
	stream.log = o.Logger
	stream.buf = nil
	stream.curr = nil
	stream.end = nil
	stream.gen++
	stream.spec = 0
}

// Policy returns the Policy for the stream.
func (stream *RuneStream) Policy() Policy {
	return stream.policy
}

// Save creates a save point.
func (stream *RuneStream) Save() SavePoint {
	return SavePoint{stream.gen, stream.spec}
}

// Restore rewinds the character stream to the given save point.
func (stream *RuneStream) Restore(sp SavePoint) {
	if sp.gen != stream.gen {
		panic("save point is stale")
	}
	stream.spec = sp.spec
	stream.curr = nil
}

// Rewind rewinds the character stream to the last Commit() call.
func (stream *RuneStream) Rewind() {
	stream.spec = 0
	stream.curr = nil
}

// Commit tells the RuneStream that the caller will never need to rewind past
// this point, allowing the RuneStream to free resources.
//
// Each call to Commit() invalidates all save points.
//
func (stream *RuneStream) Commit() {
	stream.buf = stream.buf[stream.spec:]
	stream.gen++
	stream.spec = 0
	stream.curr = nil
}

// load decodes the next result from the byte stream.
func (stream *RuneStream) load() {
	if len(stream.buf) >= 0x40000000 {
		panic("too many calls to Advance() without Commit()")
	}
	if stream.end != nil {
		stream.buf = append(stream.buf, *stream.end)
		return
	}

	for {
		pos := stream.d.Position()
		r, size, err := stream.d.ReadRune()
		item := savedRune{pos: pos, value: r, size: size}
		if err != nil {
			var skip bool
			item.value, item.err, skip, item.final = stream.policy.resolve(err)
			if item.err == nil {
				stream.hidden(err)
			}
			if skip {
				continue
			}
		}
		stream.buf = append(stream.buf, item)
		if item.final {
			stream.end = &item
		}
		return
	}
}

// hidden logs a malformed sequence that the Policy kept from the caller.
func (stream *RuneStream) hidden(err error) {
	if stream.log == nil {
		return
	}
	var derr *DecodeError
	if errors.As(err, &derr) {
		stream.log.LogAttrs(context.Background(), slog.LevelDebug, "malformed UTF-8",
			slog.String("kind", string(derr.Kind)),
			slog.String("bytes", fmt.Sprintf("% X", derr.Bytes)),
			slog.Any("pos", derr.Pos),
			slog.String("policy", stream.policy.String()))
	}
}

// Advance moves forward in the stream, returning true if a new character is
// available or false if an error (such as io.EOF) was encountered.
//
// Under the Report policy a *DecodeError makes Advance return false once;
// calling Advance again resumes after the malformed sequence. All other
// errors are permanent.
//
func (stream *RuneStream) Advance() bool {
	if stream.curr != nil && stream.curr.final {
		return false
	}
	if stream.spec >= uint(len(stream.buf)) {
		stream.load()
	}
	stream.curr = &stream.buf[stream.spec]
	stream.spec++
	return stream.curr.err == nil
}

// Rune returns the character at the current stream position.
func (stream *RuneStream) Rune() rune {
	return stream.curr.value
}

// Size returns the number of bytes occupied by the character at the current
// stream position.
func (stream *RuneStream) Size() int {
	return stream.curr.size
}

// Position returns the position of the stream.
func (stream *RuneStream) Position() Position {
	return stream.curr.pos
}

// Err returns the error encountered while reading the stream.
func (stream *RuneStream) Err() error {
	if stream.curr == nil {
		return nil
	}
	return stream.curr.err
}

// Take consumes one character, advancing the stream only if the next rune
// matches pred.
func (stream *RuneStream) Take(pred func(rune) bool) (rune, bool) {
	sp := stream.Save()
	if stream.Advance() && pred(stream.curr.value) {
		return stream.curr.value, true
	}
	stream.Restore(sp)
	return 0, false
}

// TakeWhile consumes zero or more characters, advancing the stream so long as
// pred returns true for each new rune.
//
// If max is negative, then the number of runes that can match is unbounded;
// otherwise, max is the upper limit on the number of runes matched.
//
func (stream *RuneStream) TakeWhile(max int, out []rune, pred func(rune) bool) []rune {
	sp := stream.Save()
	count := 0
	for max < 0 || count < max {
		if !stream.Advance() {
			break
		}
		if !pred(stream.curr.value) {
			break
		}
		count++
		out = append(out, stream.curr.value)
		sp = stream.Save()
	}
	stream.Restore(sp)
	return out
}

// TakeUntil consumes zero or more characters, advancing the stream until pred
// returns true for a rune.
//
// If max is negative, then the number of runes that can match is unbounded;
// otherwise, max is the upper limit on the number of runes matched.
//
func (stream *RuneStream) TakeUntil(max int, out []rune, pred func(rune) bool) []rune {
	return stream.TakeWhile(max, out, func(r rune) bool { return !pred(r) })
}
