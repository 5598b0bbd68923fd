package base32

import (
	stdbase32 "encoding/base32"
	"fmt"
	"strings"
	"unicode"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// MinStructuralLength is the shortest secret accepted by IsStructurallyValid.
const MinStructuralLength = 8

var (
	encoding = stdbase32.StdEncoding.WithPadding(stdbase32.NoPadding)

	// decodeMap maps an ASCII byte to its 5-bit value, 0xFF for invalid bytes.
	decodeMap = func() [256]byte {
		var m [256]byte
		for i := range m {
			m[i] = 0xFF
		}
		for i := 0; i < len(alphabet); i++ {
			m[alphabet[i]] = byte(i)
			m[unicode.ToLower(rune(alphabet[i]))] = byte(i)
		}
		return m
	}()
)

// Encode returns the unpadded upper-case Base32 form of b.
func Encode(b []byte) string {
	return encoding.EncodeToString(b)
}

// Normalize strips separators and padding that Decode ignores.
func Normalize(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' || r == '=' {
			return -1
		}
		return r
	}, text)
}

// Decode parses Base32 text into bytes.
func Decode(text string) ([]byte, error) {
	clean := Normalize(text)

	out := make([]byte, 0, len(clean)*5/8)
	var (
		buffer uint32
		bits   uint
	)
	for i := 0; i < len(clean); i++ {
		v := decodeMap[clean[i]]
		if v == 0xFF {
			return nil, fmt.Errorf("%w at position %d", ErrInvalidCharacter, i)
		}
		buffer = buffer<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>bits))
			buffer &= 1<<bits - 1
		}
	}

	if bits > 0 && buffer != 0 {
		return nil, ErrInvalidPadding
	}

	return out, nil
}

// IsStructurallyValid reports whether text consists of alphabet characters,
// optionally followed by trailing '=' padding, and is at least
// MinStructuralLength characters long. It does not check trailing bits.
func IsStructurallyValid(text string) bool {
	if len(text) < MinStructuralLength {
		return false
	}

	body := strings.TrimRight(text, "=")
	if body == "" {
		return false
	}
	for i := 0; i < len(body); i++ {
		if decodeMap[body[i]] == 0xFF {
			return false
		}
	}
	return true
}
