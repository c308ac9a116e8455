// Package lexscan implements the raw, untokenized byte scanning the xref
// chain walker and the brute-force recovery scanner both need: skipping
// whitespace, matching a keyword without consuming on mismatch, finding the
// next/previous occurrence of a keyword, and reading decimal integers and
// lines. It is spec.md's LexScanner.
//
// This is deliberately lower-level than objreader.Reader: it never
// allocates a tokenizer and never looks past the bytes it is asked about,
// which is what makes it safe to run over adversarial, possibly-truncated
// input during recovery.
package lexscan

import "bytes"

// IsWhitespace reports whether b is PDF whitespace (ISO 32000 Table 1: NUL,
// HT, LF, FF, CR, SP).
func IsWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	default:
		return false
	}
}

// IsDelimiter reports whether b is one of the nine PDF delimiter
// characters.
func IsDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return false
	}
}

// IsDigit reports whether b is an ASCII decimal digit.
func IsDigit(b byte) bool { return b >= '0' && b <= '9' }

// SkipWhitespace returns the first offset at or after i in buf that is not
// whitespace. If every byte from i onward is whitespace, it returns
// len(buf).
func SkipWhitespace(buf []byte, i int) int {
	for i < len(buf) && IsWhitespace(buf[i]) {
		i++
	}
	return i
}

// SkipWhitespaceAndComments is like SkipWhitespace but additionally skips
// "% ... <eol>" comments, which are allowed wherever whitespace is.
func SkipWhitespaceAndComments(buf []byte, i int) int {
	for {
		i = SkipWhitespace(buf, i)
		if i >= len(buf) || buf[i] != '%' {
			return i
		}
		for i < len(buf) && buf[i] != '\r' && buf[i] != '\n' {
			i++
		}
	}
}

// MatchKeyword reports whether buf[i:] begins with keyword (after skipping
// leading whitespace from i). It does not consume anything; it merely
// reports the match and the offset just past it.
func MatchKeyword(buf []byte, i int, keyword string) (matched bool, end int) {
	i = SkipWhitespace(buf, i)
	if i+len(keyword) > len(buf) {
		return false, i
	}
	if string(buf[i:i+len(keyword)]) != keyword {
		return false, i
	}
	return true, i + len(keyword)
}

// FindKeyword returns the offset of the next occurrence of keyword at or
// after i, or -1 if none exists.
func FindKeyword(buf []byte, i int, keyword string) int {
	if i < 0 {
		i = 0
	}
	if i >= len(buf) {
		return -1
	}
	rel := bytes.Index(buf[i:], []byte(keyword))
	if rel < 0 {
		return -1
	}
	return i + rel
}

// FindLastKeyword returns the offset of the last occurrence of keyword at
// or before the end of buf, or -1 if none exists.
func FindLastKeyword(buf []byte, keyword string) int {
	return bytes.LastIndex(buf, []byte(keyword))
}

// ReadUint reads an unsigned decimal integer starting at i (after skipping
// leading whitespace), returning its value and the offset just past its
// last digit. ok is false if no digit was found at that position.
func ReadUint(buf []byte, i int) (value uint64, end int, ok bool) {
	i = SkipWhitespace(buf, i)
	start := i
	for i < len(buf) && IsDigit(buf[i]) {
		value = value*10 + uint64(buf[i]-'0')
		i++
	}
	if i == start {
		return 0, start, false
	}
	return value, i, true
}

// ReadGeneration reads a generation number, which is syntactically just an
// unsigned integer but is kept as a distinct entry point because spec.md
// names it separately (§4.2) and callers reason about it as a uint32.
func ReadGeneration(buf []byte, i int) (gen uint32, end int, ok bool) {
	v, end, ok := ReadUint(buf, i)
	return uint32(v), end, ok
}

// ReadLine reads one line starting at i, terminated by whichever of CR,
// LF, or CRLF appears first. The returned slice excludes the terminator;
// end is the offset just past the terminator (or len(buf) if none was
// found before EOF).
func ReadLine(buf []byte, i int) (line []byte, end int) {
	start := i
	for i < len(buf) && buf[i] != '\r' && buf[i] != '\n' {
		i++
	}
	line = buf[start:i]
	if i >= len(buf) {
		return line, i
	}
	if buf[i] == '\r' {
		i++
		if i < len(buf) && buf[i] == '\n' {
			i++
		}
		return line, i
	}
	// buf[i] == '\n'
	return line, i + 1
}

// PrecededByWhitespace reports whether the byte immediately before i is
// whitespace, or i is 0. It is used to distinguish "xref" from the tail of
// "startxref", and "obj" preceded by a digit from an unrelated word.
func PrecededByWhitespace(buf []byte, i int) bool {
	if i <= 0 {
		return true
	}
	return IsWhitespace(buf[i-1])
}

// SkipBackWhitespace returns the index of the last non-whitespace byte at
// or before i. If every byte up to i is whitespace, it returns -1.
func SkipBackWhitespace(buf []byte, i int) int {
	for i >= 0 && IsWhitespace(buf[i]) {
		i--
	}
	return i
}

// ReadUintBackward reads the decimal integer ending at (and including)
// index i, scanning backward, returning its value and the offset of its
// first digit. ok is false if buf[i] is not a digit.
func ReadUintBackward(buf []byte, i int) (value uint64, start int, ok bool) {
	if i < 0 || i >= len(buf) || !IsDigit(buf[i]) {
		return 0, i, false
	}
	end := i
	for i >= 0 && IsDigit(buf[i]) {
		i--
	}
	start = i + 1
	mult := uint64(1)
	for j := end; j >= start; j-- {
		value += uint64(buf[j]-'0') * mult
		mult *= 10
	}
	return value, start, true
}
