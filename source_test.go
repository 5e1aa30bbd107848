package utf8stream

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func collect(t *testing.T, src ByteSource) []rune {
	t.Helper()
	var out []rune
	for r, err := range NewDecoder(src).Runes(Report) {
		require.NoError(t, err)
		out = append(out, r)
	}
	return out
}

func TestFromReader(t *testing.T) {
	br := bytes.NewReader(nil)
	assert.Equal(t, ByteSource(br), FromReader(br))

	bufr := bufio.NewReader(strings.NewReader(""))
	assert.Equal(t, ByteSource(bufr), FromReader(bufr))

	testCases := map[string]io.Reader{
		"one byte reads":  iotest.OneByteReader(strings.NewReader("日本語 😀")),
		"half reads":      iotest.HalfReader(strings.NewReader("日本語 😀")),
		"eof with data":   iotest.DataErrReader(strings.NewReader("日本語 😀")),
		"bufio over half": bufio.NewReader(iotest.HalfReader(strings.NewReader("日本語 😀"))),
	}
	for name, r := range testCases {
		t.Run(name, func(t *testing.T) {
			got := collect(t, FromReader(r))
			if diff := cmp.Diff([]rune("日本語 😀"), got); diff != "" {
				t.Error("decoded runes did not match expectations:", diff)
			}
		})
	}
}

func TestFromBytes(t *testing.T) {
	got := collect(t, FromBytes([]byte("aé€")))
	if diff := cmp.Diff([]rune{'a', 'é', '€'}, got); diff != "" {
		t.Error(diff)
	}
}

func TestByteSourceFunc(t *testing.T) {
	input := []byte{0xf0, 0x9f, 0x98, 0x80}
	calls := 0
	src := ByteSourceFunc(func() (byte, error) {
		if calls == len(input) {
			return 0, io.EOF
		}
		calls++
		return input[calls-1], nil
	})

	r, size, err := NewDecoder(src).ReadRune()
	require.NoError(t, err)
	assert.Equal(t, rune(0x1f600), r)
	assert.Equal(t, 4, size)
	assert.Equal(t, 4, calls)
}

func TestWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDecoder(WithContext(ctx, strings.NewReader("ab")))
	r, _, err := d.ReadRune()
	require.NoError(t, err)
	assert.Equal(t, 'a', r)

	cancel()
	_, _, err = d.ReadRune()
	assert.Equal(t, context.Canceled, err)
	assert.False(t, IsDecodeError(err))
	assert.Equal(t, uint64(1), d.Position().Offset)
}

func TestWithContext_midSequence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inner := strings.NewReader("\xe2\x82\xac")
	src := ByteSourceFunc(func() (byte, error) {
		b, err := inner.ReadByte()
		if inner.Len() == 1 {
			cancel()
		}
		return b, err
	})

	_, size, err := NewDecoder(WithContext(ctx, src)).ReadRune()
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 2, size)
}

func TestFromEncoding(t *testing.T) {
	testCases := map[string]struct {
		enc   encoding.Encoding
		input []byte
		want  []rune
	}{
		"latin-1": {
			enc:   charmap.ISO8859_1,
			input: []byte{'c', 'a', 'f', 0xe9},
			want:  []rune("café"),
		},
		"windows-1252": {
			enc:   charmap.Windows1252,
			input: []byte{0x80, ' ', 0x93, 'x', 0x94},
			want:  []rune("€ “x”"),
		},
		"utf-16 big endian": {
			enc:   unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
			input: []byte{0x20, 0xac, 0xd8, 0x3d, 0xde, 0x00},
			want:  []rune{'€', 0x1f600},
		},
		"utf-16 with bom": {
			enc:   unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM),
			input: []byte{0xff, 0xfe, 0x41, 0x00, 0xe9, 0x00},
			want:  []rune("Aé"),
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := collect(t, FromEncoding(bytes.NewReader(tc.input), tc.enc))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Error("decoded runes did not match expectations:", diff)
			}
		})
	}
}
