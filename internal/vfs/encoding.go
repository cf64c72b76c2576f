package vfs

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names a character encoding. Values other than the constants below
// are IANA charset names as reported by the detector (e.g. "windows-1252").
type Encoding string

const (
	// EncodingUTF8 is UTF-8 without BOM (default).
	EncodingUTF8 Encoding = "utf-8"

	// EncodingUTF8BOM is UTF-8 with BOM.
	EncodingUTF8BOM Encoding = "utf-8-bom"

	// EncodingUTF16LE is UTF-16 Little Endian with BOM.
	EncodingUTF16LE Encoding = "utf-16le"

	// EncodingUTF16BE is UTF-16 Big Endian with BOM.
	EncodingUTF16BE Encoding = "utf-16be"

	// EncodingLatin1 is ISO-8859-1, used when detection gives nothing usable.
	EncodingLatin1 Encoding = "iso-8859-1"
)

// LineEnding represents the line ending style.
type LineEnding string

const (
	// LineEndingLF is Unix-style line ending (\n).
	LineEndingLF LineEnding = "lf"

	// LineEndingCRLF is Windows-style line ending (\r\n).
	LineEndingCRLF LineEnding = "crlf"

	// LineEndingCR is old Mac-style line ending (\r).
	LineEndingCR LineEnding = "cr"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding reports the encoding of content.
// BOM markers win, then UTF-8 validity, then the chardet text detector.
func DetectEncoding(content []byte) Encoding {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(content, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(content, bomUTF16BE):
		return EncodingUTF16BE
	case utf8.Valid(content):
		return EncodingUTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(content)
	if err != nil || result == nil || result.Charset == "" {
		return EncodingLatin1
	}
	name := strings.ToLower(result.Charset)
	if name == "utf-8" {
		// The detector guesses UTF-8 for near-valid input; we already know it isn't.
		return EncodingLatin1
	}
	if _, err := lookup(Encoding(name)); err != nil {
		return EncodingLatin1
	}
	return Encoding(name)
}

// Decode converts raw file content to UTF-8 text and reports the encoding
// that must be used to write it back.
func Decode(content []byte) (string, Encoding, error) {
	enc := DetectEncoding(content)
	switch enc {
	case EncodingUTF8:
		return string(content), enc, nil
	case EncodingUTF8BOM:
		return string(content[len(bomUTF8):]), enc, nil
	}

	codec, err := lookup(enc)
	if err != nil {
		return "", enc, err
	}
	out, err := codec.NewDecoder().Bytes(content)
	if err != nil {
		return "", enc, fmt.Errorf("decoding %s: %w", enc, err)
	}
	return string(out), enc, nil
}

// Encode converts UTF-8 text to the given encoding.
func Encode(text string, enc Encoding) ([]byte, error) {
	switch enc {
	case "", EncodingUTF8:
		return []byte(text), nil
	case EncodingUTF8BOM:
		return append(append([]byte{}, bomUTF8...), text...), nil
	}

	codec, err := lookup(enc)
	if err != nil {
		return nil, err
	}
	out, err := codec.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", enc, err)
	}
	return out, nil
}

func lookup(enc Encoding) (encoding.Encoding, error) {
	switch enc {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case EncodingLatin1:
		return charmap.ISO8859_1, nil
	}

	codec, err := ianaindex.IANA.Encoding(string(enc))
	if err != nil {
		return nil, err
	}
	if codec == nil {
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
	return codec, nil
}

// DetectLineEnding returns the dominant line ending in content.
// Content without any line break defaults to LF.
func DetectLineEnding(content []byte) LineEnding {
	var lf, crlf, cr int
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				crlf++
				i++
			} else {
				cr++
			}
		case '\n':
			lf++
		}
	}

	switch {
	case crlf > 0 && crlf >= lf && crlf >= cr:
		return LineEndingCRLF
	case cr > lf:
		return LineEndingCR
	default:
		return LineEndingLF
	}
}

// Sequence returns the byte sequence of the line ending.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// SplitLines splits text on any line ending style.
// The result always has at least one (possibly empty) line.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// IsBinary reports whether content looks like binary data.
// UTF-16 content with a BOM is text even though it contains NUL bytes.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	if bytes.HasPrefix(content, bomUTF16LE) || bytes.HasPrefix(content, bomUTF16BE) {
		return false
	}

	sample := content
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	nonText := 0
	for _, b := range sample {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			nonText++
		}
	}
	return float64(nonText)/float64(len(sample)) > 0.1
}
