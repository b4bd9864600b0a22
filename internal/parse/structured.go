// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package parse

import (
	"strings"
	"unicode/utf16"

	"github.com/jeranaias/redraft/internal/model"
)

// Field names of the grammar-check response object.
const (
	fieldRevisedText    = "revised_text"
	fieldAdditionalText = "additional_text"
)

// =============================================================================
// STRUCTURED (GRAMMAR CHECK) PARSER
// =============================================================================

// structuredParser incrementally parses a partial JSON object with two
// string fields. The primary field (revised_text) is streamed as soon as
// its string value is syntactically open, independently of whether the
// secondary field (additional_text) has started.
type structuredParser struct{}

func (structuredParser) Snapshot(buf string) (model.StreamingUpdate, bool) {
	fields := scanObjectFields(buf)
	revised, ok := fields[fieldRevisedText]
	if !ok {
		return model.StreamingUpdate{}, false
	}
	return model.TextUpdate(revised.value), true
}

func (structuredParser) Finalize(buf string) Final {
	fields := scanObjectFields(buf)

	f := Final{}
	if revised, ok := fields[fieldRevisedText]; ok {
		f.Text = revised.value
		f.DiffSource = revised.value
	}
	if extra, ok := fields[fieldAdditionalText]; ok && extra.value != "" {
		f.Supplemental = append(f.Supplemental, extra.value)
	}
	return f
}

// =============================================================================
// PARTIAL OBJECT SCANNER
// =============================================================================

// fieldState is the decoded value of one string field and whether its
// closing quote has been seen.
type fieldState struct {
	value    string
	complete bool
}

// scanObjectFields walks a possibly-truncated JSON object and returns the
// decoded state of every top-level string field encountered so far. A field
// whose value is still open contributes the characters decoded to date;
// an incomplete trailing escape sequence is withheld.
func scanObjectFields(buf string) map[string]fieldState {
	fields := make(map[string]fieldState)

	i := strings.IndexByte(buf, '{')
	if i < 0 {
		return fields
	}
	i++

	for i < len(buf) {
		i = skipWhitespace(buf, i)
		if i >= len(buf) {
			return fields
		}
		switch buf[i] {
		case '}':
			return fields
		case ',':
			i++
			continue
		case '"':
			// Key must be complete before the field counts.
			key, end, complete := decodeString(buf, i+1)
			if !complete {
				return fields
			}
			i = skipWhitespace(buf, end)
			if i >= len(buf) || buf[i] != ':' {
				return fields
			}
			i = skipWhitespace(buf, i+1)
			if i >= len(buf) {
				return fields
			}
			if buf[i] == '"' {
				value, end, complete := decodeString(buf, i+1)
				fields[key] = fieldState{value: value, complete: complete}
				if !complete {
					return fields
				}
				i = end
			} else {
				// Non-string value: skip to the next separator at
				// this nesting level.
				i = skipValue(buf, i)
			}
		default:
			// Unexpected byte; stop rather than guess.
			return fields
		}
	}
	return fields
}

// skipWhitespace advances past JSON whitespace.
func skipWhitespace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

// skipValue advances past a non-string JSON value (number, literal, nested
// object or array), tracking string and bracket state.
func skipValue(s string, i int) int {
	depth := 0
	inString := false
	escaped := false

	for ; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			if depth == 0 {
				return i
			}
			depth--
		case ',':
			if depth == 0 {
				return i
			}
		}
	}
	return i
}

// decodeString decodes a JSON string starting just after its opening quote.
// It returns the decoded characters so far, the index just past the closing
// quote (or len(s) when unterminated), and whether the closing quote was
// seen. A trailing escape with missing bytes is withheld from the output.
func decodeString(s string, i int) (string, int, bool) {
	var sb strings.Builder

	for i < len(s) {
		c := s[i]
		switch {
		case c == '"':
			return sb.String(), i + 1, true
		case c == '\\':
			r, next, ok := decodeEscape(s, i)
			if !ok {
				// Incomplete escape at end of buffer.
				return sb.String(), len(s), false
			}
			sb.WriteRune(r)
			i = next
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), i, false
}

// decodeEscape decodes one escape sequence starting at the backslash.
// Surrogate pairs spanning two \uXXXX escapes are combined; a pair whose
// second half has not arrived yet is reported as incomplete.
func decodeEscape(s string, i int) (rune, int, bool) {
	if i+1 >= len(s) {
		return 0, i, false
	}
	switch s[i+1] {
	case '"':
		return '"', i + 2, true
	case '\\':
		return '\\', i + 2, true
	case '/':
		return '/', i + 2, true
	case 'b':
		return '\b', i + 2, true
	case 'f':
		return '\f', i + 2, true
	case 'n':
		return '\n', i + 2, true
	case 'r':
		return '\r', i + 2, true
	case 't':
		return '\t', i + 2, true
	case 'u':
		r, next, ok := decodeHexRune(s, i)
		if !ok {
			return 0, i, false
		}
		if utf16.IsSurrogate(r) {
			// An unpaired low surrogate can never combine; replace it
			// the way encoding/json does.
			if r >= 0xDC00 {
				return 0xFFFD, next, true
			}
			if r2, next2, ok2 := decodeHexRune(s, next); ok2 {
				if combined := utf16.DecodeRune(r, r2); combined != 0xFFFD {
					return combined, next2, true
				}
				// Partner is not a low surrogate; replace the high one
				// and leave the second escape for the next iteration.
				return 0xFFFD, next, true
			}
			// Withhold only while the buffer could still grow into a
			// \uXXXX partner; anything else makes the pair impossible.
			if couldBeHexEscapePrefix(s[next:]) {
				return 0, i, false
			}
			return 0xFFFD, next, true
		}
		return r, next, true
	default:
		// Unknown escape: keep the literal character.
		return rune(s[i+1]), i + 2, true
	}
}

// couldBeHexEscapePrefix reports whether s is a proper prefix of a \uXXXX
// escape, i.e. whether more streamed bytes could still complete one.
func couldBeHexEscapePrefix(s string) bool {
	if len(s) >= 6 {
		return false
	}
	if len(s) == 0 {
		return true
	}
	if s[0] != '\\' {
		return false
	}
	if len(s) == 1 {
		return true
	}
	if s[1] != 'u' {
		return false
	}
	for _, c := range []byte(s[2:]) {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// decodeHexRune decodes a \uXXXX sequence starting at the backslash.
func decodeHexRune(s string, i int) (rune, int, bool) {
	if i+6 > len(s) || s[i] != '\\' || s[i+1] != 'u' {
		return 0, i, false
	}
	var r rune
	for _, c := range []byte(s[i+2 : i+6]) {
		var v byte
		switch {
		case c >= '0' && c <= '9':
			v = c - '0'
		case c >= 'a' && c <= 'f':
			v = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			v = c - 'A' + 10
		default:
			return 0, i, false
		}
		r = r<<4 | rune(v)
	}
	return r, i + 6, true
}
