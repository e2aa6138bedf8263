package srcbuf

import (
	"fmt"
	"sort"
	"strings"
)

// A view of a range of a source file with a set of non-overlapping edits
// applied on top. The source text itself is never mutated.
type Buffer struct {
	source *Source
	start  int
	end    int
	edits  []edit
}

type edit struct {
	start int
	end   int
	text  string
}

func New(source *Source) *Buffer {
	return &Buffer{source: source, start: 0, end: len(source.Contents)}
}

func (b *Buffer) Source() *Source {
	return b.source
}

func (b *Buffer) Start() int {
	return b.start
}

func (b *Buffer) End() int {
	return b.end
}

// Returns a new buffer over a sub-range of this one. Edits that lie entirely
// inside the range are carried over.
func (b *Buffer) Snip(start int, end int) *Buffer {
	if start < b.start || end > b.end || start > end {
		panic(fmt.Sprintf("Cannot snip [%d, %d) from a buffer over [%d, %d)", start, end, b.start, b.end))
	}
	clone := &Buffer{source: b.source, start: start, end: end}
	for _, e := range b.edits {
		if e.start >= start && e.end <= end {
			clone.edits = append(clone.edits, e)
		}
	}
	return clone
}

func conflicts(a edit, b edit) bool {
	if a.start == a.end && b.start == b.end {
		return false
	}
	if a.start == a.end {
		return b.start < a.start && a.start < b.end
	}
	if b.start == b.end {
		return a.start < b.start && b.start < a.end
	}
	return a.start < b.end && b.start < a.end
}

// Replaces the source text in [start, end) with the given text. An empty
// range inserts the text at that position. Overlapping edits are a bug in
// the caller and cause a panic.
func (b *Buffer) Overwrite(start int, end int, text string) {
	if start < b.start || end > b.end || start > end {
		panic(fmt.Sprintf("Cannot overwrite [%d, %d) in a buffer over [%d, %d)", start, end, b.start, b.end))
	}
	e := edit{start: start, end: end, text: text}
	for _, other := range b.edits {
		if conflicts(e, other) {
			panic(fmt.Sprintf("Cannot overwrite [%d, %d) because [%d, %d) was already edited", start, end, other.start, other.end))
		}
	}
	b.edits = append(b.edits, e)
	sort.SliceStable(b.edits, func(i int, j int) bool {
		x, y := b.edits[i], b.edits[j]
		if x.start != y.start {
			return x.start < y.start
		}
		return x.end < y.end
	})
}

func (b *Buffer) Remove(start int, end int) {
	b.Overwrite(start, end, "")
}

func (b *Buffer) Insert(at int, text string) {
	b.Overwrite(at, at, text)
}

// A run of output text. Verbatim chunks correspond byte for byte to the
// source text starting at "original"; edited chunks only map their start.
type chunk struct {
	text     string
	source   *Source
	original int
	verbatim bool
}

func (b *Buffer) appendChunks(chunks []chunk) []chunk {
	pos := b.start
	contents := b.source.Contents
	for _, e := range b.edits {
		if pos < e.start {
			chunks = append(chunks, chunk{text: contents[pos:e.start], source: b.source, original: pos, verbatim: true})
		}
		if e.text != "" {
			chunks = append(chunks, chunk{text: e.text, source: b.source, original: e.start})
		}
		pos = e.end
	}
	if pos < b.end {
		chunks = append(chunks, chunk{text: contents[pos:b.end], source: b.source, original: pos, verbatim: true})
	}
	return chunks
}

func (b *Buffer) String() string {
	sb := strings.Builder{}
	for _, c := range b.appendChunks(nil) {
		sb.WriteString(c.text)
	}
	return sb.String()
}
