package utf8stream

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Policy selects what a caller sees when the input holds malformed UTF-8.
type Policy uint8

const (
	// Report passes each *DecodeError to the caller and carries on with the
	// byte after the malformed sequence.
	Report Policy = iota

	// Halt passes the first *DecodeError to the caller and stops there.
	Halt

	// Skip silently drops malformed sequences.
	Skip

	// Replace turns each malformed sequence into one utf8.RuneError
	// (U+FFFD).
	Replace
)

var policyNames = [...]string{
	Report:  "report",
	Halt:    "halt",
	Skip:    "skip",
	Replace: "replace",
}

func (p Policy) String() string {
	if int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("Policy(%d)", uint8(p))
}

// ParsePolicy returns the Policy named by s, ignoring case.
func ParsePolicy(s string) (Policy, error) {
	for p, name := range policyNames {
		if strings.EqualFold(s, name) {
			return Policy(p), nil
		}
	}
	return 0, fmt.Errorf("utf8stream: unknown policy %q", s)
}

// resolve decides how a non-nil error from ReadRune reaches the caller. If
// skip is true the result is dropped; if final is true nothing may follow it.
// Errors that are not *DecodeError always end the stream.
func (p Policy) resolve(err error) (r rune, out error, skip, final bool) {
	if !IsDecodeError(err) {
		return 0, err, false, true
	}
	switch p {
	case Halt:
		return utf8.RuneError, err, false, true
	case Skip:
		return 0, nil, true, false
	case Replace:
		return utf8.RuneError, nil, false, false
	default:
		return utf8.RuneError, err, false, false
	}
}
