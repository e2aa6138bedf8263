package helpers

import "unicode/utf8"

const hexChars = "0123456789ABCDEF"
const firstASCII = 0x20
const lastASCII = 0x7E
const firstHighSurrogate = 0xD800
const firstLowSurrogate = 0xDC00
const lastLowSurrogate = 0xDFFF

func canPrintWithoutEscape(c rune, quoteChar byte) bool {
	if c <= lastASCII {
		return c >= firstASCII && c != '\\' && c != rune(quoteChar)
	}
	return c != '\uFEFF' && c != utf8.RuneError && (c < firstHighSurrogate || c > lastLowSurrogate)
}

// Quotes a string as a JavaScript single-quoted string literal
func QuoteSingle(text string) string {
	return string(internalQuote(text, '\''))
}

// Quotes a string as a JSON string (double quotes, JSON escapes only)
func QuoteForJSON(text string) string {
	return string(internalQuote(text, '"'))
}

func internalQuote(text string, quoteChar byte) []byte {
	bytes := make([]byte, 0, len(text)+2)
	bytes = append(bytes, quoteChar)

	for i := 0; i < len(text); {
		c, width := utf8.DecodeRuneInString(text[i:])

		// Fast path: a run of characters that don't need escaping
		if canPrintWithoutEscape(c, quoteChar) {
			start := i
			i += width
			for i < len(text) {
				c, width = utf8.DecodeRuneInString(text[i:])
				if !canPrintWithoutEscape(c, quoteChar) {
					break
				}
				i += width
			}
			bytes = append(bytes, text[start:i]...)
			continue
		}

		i += width
		switch c {
		case '\b':
			bytes = append(bytes, "\\b"...)
		case '\f':
			bytes = append(bytes, "\\f"...)
		case '\n':
			bytes = append(bytes, "\\n"...)
		case '\r':
			bytes = append(bytes, "\\r"...)
		case '\t':
			bytes = append(bytes, "\\t"...)
		case '\\':
			bytes = append(bytes, "\\\\"...)
		case rune(quoteChar):
			bytes = append(bytes, '\\', quoteChar)
		default:
			if c <= 0xFFFF {
				bytes = appendEscapedUnit(bytes, c)
			} else {
				c -= 0x10000
				bytes = appendEscapedUnit(bytes, firstHighSurrogate+((c>>10)&0x3FF))
				bytes = appendEscapedUnit(bytes, firstLowSurrogate+(c&0x3FF))
			}
		}
	}

	return append(bytes, quoteChar)
}

func appendEscapedUnit(bytes []byte, c rune) []byte {
	return append(bytes, '\\', 'u', hexChars[c>>12], hexChars[(c>>8)&15], hexChars[(c>>4)&15], hexChars[c&15])
}
