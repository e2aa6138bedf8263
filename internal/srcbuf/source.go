package srcbuf

import (
	"sync"
	"unicode/utf8"
)

// A source file whose text can be sliced and edited by buffers. Line starts
// are computed lazily the first time a position is converted for a source map.
type Source struct {
	Name     string
	Contents string

	lineStartsOnce sync.Once
	lineStarts     []int
}

func NewSource(name string, contents string) *Source {
	return &Source{Name: name, Contents: contents}
}

func (s *Source) computeLineStarts() {
	s.lineStarts = append(s.lineStarts, 0)
	text := s.Contents
	for i, c := range text {
		switch c {
		case '\r':
			// Handle Windows-specific "\r\n" newlines
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			s.lineStarts = append(s.lineStarts, i+1)
		case '\n':
			s.lineStarts = append(s.lineStarts, i+1)
		case '\u2028', '\u2029':
			s.lineStarts = append(s.lineStarts, i+3)
		}
	}
}

// Converts a byte offset into a 0-based line and a 0-based column counted in
// UTF-16 code units, which is what source maps use
func (s *Source) LineColumn(offset int) (line int32, column int32) {
	s.lineStartsOnce.Do(s.computeLineStarts)
	if offset > len(s.Contents) {
		offset = len(s.Contents)
	}

	// Binary search for the last line start at or before the offset
	lo, hi := 0, len(s.lineStarts)
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if s.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid
		}
	}

	for _, c := range s.Contents[s.lineStarts[lo]:offset] {
		if c <= 0xFFFF || c == utf8.RuneError {
			column++
		} else {
			column += 2
		}
	}
	return int32(lo), column
}
