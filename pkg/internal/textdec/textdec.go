// Package textdec turns raw document bytes into UTF-8 text for the core
// analysis tiers: byte-order-mark detection and UTF-16 decoding. The tiers
// themselves always operate on already-decoded text.
package textdec

import (
	"bufio"
	"bytes"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode returns data as UTF-8 with any byte-order mark removed. Input
// without a recognized BOM passes through untouched; decoding problems fall
// back to the raw bytes rather than failing, since downstream tiers are built
// for damaged input anyway.
func Decode(data []byte) []byte {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeUTF16(data, unicode.LittleEndian)
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data, unicode.BigEndian)
	default:
		return data
	}
}

// NewReader wraps r so the stream comes out as UTF-8 with any byte-order
// mark removed, sniffing only the first bytes.
func NewReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	head, _ := br.Peek(3)
	switch {
	case bytes.HasPrefix(head, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br
	case bytes.HasPrefix(head, bomUTF16LE):
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case bytes.HasPrefix(head, bomUTF16BE):
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	default:
		return br
	}
}

func decodeUTF16(data []byte, e unicode.Endianness) []byte {
	dec := unicode.UTF16(e, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return data
	}
	return out
}
