package utf8stream

import (
	"errors"
	"fmt"
)

// Kind names one class of malformed UTF-8. Kinds are errors themselves, so
// they can be declared const and matched with errors.Is.
type Kind string

// Error fulfills the error interface.
func (k Kind) Error() string { return string(k) }

const (
	ErrInvalidLead         Kind = "invalid lead byte"
	ErrTruncated           Kind = "truncated sequence"
	ErrInvalidContinuation Kind = "invalid continuation byte"
	ErrOverlong            Kind = "overlong encoding"
	ErrSurrogate           Kind = "encoded surrogate"
	ErrOutOfRange          Kind = "out of Unicode range"
)

// DecodeError reports one malformed sequence.
type DecodeError struct {
	// Kind is the reason the sequence was rejected.
	Kind Kind

	// Pos is the position of the sequence's lead byte.
	Pos Position

	// Bytes holds every byte the failed attempt consumed, in order.
	Bytes []byte
}

func (err *DecodeError) Error() string {
	return fmt.Sprintf("utf8stream: %s [% X] at %v", err.Kind, err.Bytes, err.Pos)
}

// Unwrap returns the Kind, so errors.Is(err, ErrOverlong) and friends work.
func (err *DecodeError) Unwrap() error {
	return err.Kind
}

// IsDecodeError returns true iff err reports malformed data rather than a
// failure of the byte source.
func IsDecodeError(err error) bool {
	var derr *DecodeError
	return errors.As(err, &derr)
}
