package sourcemap

import (
	"encoding/base64"
	"strings"

	"github.com/fgoll/source-code-plan/internal/helpers"
)

type Mapping struct {
	GeneratedLine   int32 // 0-based
	GeneratedColumn int32 // 0-based count of UTF-16 code units

	SourceIndex    int32 // 0-based
	OriginalLine   int32 // 0-based
	OriginalColumn int32 // 0-based count of UTF-16 code units
}

type SourceMap struct {
	File    string
	Sources []string

	// Either empty or parallel to "Sources"
	SourcesContent []string

	// Sorted by increasing generated position
	Mappings []Mapping
}

func (sm *SourceMap) Find(line int32, column int32) *Mapping {
	mappings := sm.Mappings

	// Binary search
	count := len(mappings)
	index := 0
	for count > 0 {
		step := count / 2
		i := index + step
		mapping := mappings[i]
		if mapping.GeneratedLine < line || (mapping.GeneratedLine == line && mapping.GeneratedColumn <= column) {
			index = i + 1
			count -= step + 1
		} else {
			count = step
		}
	}

	// Handle search failure
	if index > 0 {
		mapping := &mappings[index-1]

		// Match the behavior of the popular "source-map" library from Mozilla
		if mapping.GeneratedLine == line {
			return mapping
		}
	}
	return nil
}

var base64Digits = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/")

// A single base 64 digit can contain 6 bits of data. For the base 64 variable
// length quantities we use in the source map format, the first bit is the
// sign, the next four bits are the actual value, and the 6th bit is the
// continuation bit. The continuation bit tells us whether there are more
// digits in this value following this digit.
//
//	Continuation
//	|    Sign
//	|    |
//	V    V
//	101011
func encodeVLQ(encoded []byte, value int) []byte {
	var vlq int
	if value < 0 {
		vlq = ((-value) << 1) | 1
	} else {
		vlq = value << 1
	}

	for {
		digit := vlq & 31
		vlq >>= 5

		// If there are still more digits in this value, we must make sure the
		// continuation bit is marked
		if vlq != 0 {
			digit |= 32
		}

		encoded = append(encoded, base64Digits[digit])
		if vlq == 0 {
			return encoded
		}
	}
}

type LineColumnOffset struct {
	Lines   int
	Columns int
}

func (offset *LineColumnOffset) AdvanceString(text string) {
	columns := offset.Columns
	for i, c := range text {
		switch c {
		case '\r', '\n', '\u2028', '\u2029':
			// Handle Windows-specific "\r\n" newlines
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				columns++
				continue
			}

			offset.Lines++
			columns = 0

		default:
			// Mozilla's "source-map" library counts columns using UTF-16 code units
			if c <= 0xFFFF {
				columns++
			} else {
				columns += 2
			}
		}
	}
	offset.Columns = columns
}

// Coordinates in source maps are stored using relative offsets for size
// reasons. This is the state the next mapping is relative to.
type state struct {
	generatedColumn int
	sourceIndex     int
	originalLine    int
	originalColumn  int
}

func (sm *SourceMap) EncodeMappings() string {
	var buffer []byte
	var prev state
	generatedLine := int32(0)

	for i, m := range sm.Mappings {
		// Handle line breaks in between this mapping and the previous one
		if m.GeneratedLine != generatedLine {
			for generatedLine < m.GeneratedLine {
				buffer = append(buffer, ';')
				generatedLine++
			}
			prev.generatedColumn = 0
		} else if i > 0 {
			buffer = append(buffer, ',')
		}

		buffer = encodeVLQ(buffer, int(m.GeneratedColumn)-prev.generatedColumn)
		buffer = encodeVLQ(buffer, int(m.SourceIndex)-prev.sourceIndex)
		buffer = encodeVLQ(buffer, int(m.OriginalLine)-prev.originalLine)
		buffer = encodeVLQ(buffer, int(m.OriginalColumn)-prev.originalColumn)

		prev = state{
			generatedColumn: int(m.GeneratedColumn),
			sourceIndex:     int(m.SourceIndex),
			originalLine:    int(m.OriginalLine),
			originalColumn:  int(m.OriginalColumn),
		}
	}

	return string(buffer)
}

// Serializes the source map in the standard version 3 JSON format
func (sm *SourceMap) String() string {
	j := helpers.Joiner{}
	j.AddString("{\"version\":3")

	if sm.File != "" {
		j.AddString(",\"file\":")
		j.AddString(helpers.QuoteForJSON(sm.File))
	}

	j.AddString(",\"sources\":[")
	for i, source := range sm.Sources {
		if i > 0 {
			j.AddString(",")
		}
		j.AddString(helpers.QuoteForJSON(source))
	}
	j.AddString("]")

	if len(sm.SourcesContent) > 0 {
		j.AddString(",\"sourcesContent\":[")
		for i, contents := range sm.SourcesContent {
			if i > 0 {
				j.AddString(",")
			}
			j.AddString(helpers.QuoteForJSON(contents))
		}
		j.AddString("]")
	}

	j.AddString(",\"names\":[],\"mappings\":")
	j.AddString(helpers.QuoteForJSON(sm.EncodeMappings()))
	j.AddString("}")
	return j.Done()
}

// Returns the source map as a "data:" URL suitable for a trailing
// "//# sourceMappingURL=" comment
func (sm *SourceMap) ToURL() string {
	sb := strings.Builder{}
	sb.WriteString("data:application/json;charset=utf-8;base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString([]byte(sm.String())))
	return sb.String()
}
