package internal

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names a text decoding strategy
type Encoding string

const (
	EncodingUTF8BOM     Encoding = "utf-8-sig"
	EncodingUTF16       Encoding = "utf-16"
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingLatin1      Encoding = "iso-8859-1"
)

// maxCorruptionPerMille bounds replacement and control characters in accepted text
const maxCorruptionPerMille = 1

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	errNoCandidate = errors.New("no candidate decoded cleanly")
)

type encodingCandidate struct {
	name   Encoding
	decode func(raw []byte) (string, bool)
}

// encodingCandidates is tried in order; the first clean decode wins
var encodingCandidates = []encodingCandidate{
	{name: EncodingUTF8BOM, decode: decodeUTF8BOM},
	{name: EncodingUTF16, decode: decodeUTF16},
	{name: EncodingUTF8, decode: decodeUTF8},
	{name: EncodingWindows1252, decode: decoderFunc(charmap.Windows1252)},
	{name: EncodingLatin1, decode: decoderFunc(charmap.ISO8859_1)},
}

// ResolveEncoding decodes raw bytes with the first candidate encoding that
// produces text without corruption. Invalid UTF-8 is never repaired.
func ResolveEncoding(raw []byte) (string, Encoding, error) {
	tried := make([]string, 0, len(encodingCandidates))
	for _, c := range encodingCandidates {
		text, ok := c.decode(raw)
		if !ok {
			continue
		}
		tried = append(tried, string(c.name))
		if isCleanText(text) {
			if c.name != EncodingUTF8 {
				LogDebug("Decoded input as %s", c.name)
			}
			return text, c.name, nil
		}
	}
	return "", "", &DecodeError{Tried: tried, Err: errNoCandidate}
}

func decodeUTF8BOM(raw []byte) (string, bool) {
	if !bytes.HasPrefix(raw, bomUTF8) {
		return "", false
	}
	rest := raw[len(bomUTF8):]
	if !utf8.Valid(rest) {
		return "", false
	}
	return string(rest), true
}

func decodeUTF16(raw []byte) (string, bool) {
	if !bytes.HasPrefix(raw, bomUTF16LE) && !bytes.HasPrefix(raw, bomUTF16BE) {
		return "", false
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func decodeUTF8(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

func decoderFunc(enc encoding.Encoding) func([]byte) (string, bool) {
	return func(raw []byte) (string, bool) {
		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
}

// isCleanText reports whether replacement and control characters stay under the threshold
func isCleanText(text string) bool {
	total, bad := 0, 0
	for _, r := range text {
		total++
		if isCorruptRune(r) {
			bad++
		}
	}
	return bad*1000 <= total*maxCorruptionPerMille
}

func isCorruptRune(r rune) bool {
	switch {
	case r == utf8.RuneError:
		return true
	case r == '\t' || r == '\n' || r == '\r':
		return false
	case r < 0x20 || r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	}
	return false
}

// DescribeEncoding renders an encoding for diagnostics
func DescribeEncoding(enc Encoding, size int) string {
	return fmt.Sprintf("%s (%d bytes)", enc, size)
}
