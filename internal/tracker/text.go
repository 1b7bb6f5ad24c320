package tracker

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

var errInvalidUTF8 = errors.New("invalid UTF-8 in input")

// checkText rejects input that encoding/json would accept only by altering
// it: invalid UTF-8 and unpaired surrogate escapes are silently replaced
// with U+FFFD, and numbers beyond the float64 range cannot be represented.
// data must already be syntactically valid JSON.
func checkText(data []byte) error {
	if !utf8.Valid(data) {
		return errInvalidUTF8
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case c == '"':
			end, err := checkString(data, i+1)
			if err != nil {
				return err
			}
			i = end
		case c == '-' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < len(data) && isNumberByte(data[j]) {
				j++
			}
			if _, err := strconv.ParseFloat(string(data[i:j]), 64); err != nil {
				return fmt.Errorf("number out of range at offset %d", i)
			}
			i = j - 1
		}
	}
	return nil
}

// checkString scans the string body starting at start and returns the
// offset of its closing quote.
func checkString(data []byte, start int) (int, error) {
	for i := start; i < len(data); i++ {
		switch data[i] {
		case '"':
			return i, nil
		case '\\':
			if data[i+1] != 'u' {
				i++
				continue
			}
			r := hex4(data[i+2 : i+6])
			if !utf16.IsSurrogate(r) {
				i += 5
				continue
			}
			// A high surrogate must be followed directly by an escaped low one.
			if r < 0xdc00 && i+11 < len(data) && data[i+6] == '\\' && data[i+7] == 'u' {
				if low := hex4(data[i+8 : i+12]); low >= 0xdc00 && low <= 0xdfff {
					i += 11
					continue
				}
			}
			return 0, fmt.Errorf("lone surrogate \\u%04x at offset %d", r, i)
		}
	}
	return len(data), nil
}

func hex4(b []byte) rune {
	n, err := strconv.ParseUint(string(b), 16, 32)
	if err != nil {
		return utf8.RuneError
	}
	return rune(n)
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}
