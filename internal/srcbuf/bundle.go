package srcbuf

import (
	"strings"

	"github.com/fgoll/source-code-plan/internal/helpers"
	"github.com/fgoll/source-code-plan/internal/sourcemap"
)

// Concatenates buffers from any number of sources into one output file and
// keeps track of where each piece of output text came from
type Bundle struct {
	intro   string
	parts   []part
	outro   string
	trimmed bool
}

type part struct {
	separator string
	buffer    *Buffer
}

// The separator is emitted before the buffer unless it is the first one
func (b *Bundle) AddSource(separator string, buffer *Buffer) {
	b.parts = append(b.parts, part{separator: separator, buffer: buffer})
}

func (b *Bundle) Prepend(text string) {
	b.intro = text + b.intro
}

func (b *Bundle) Append(text string) {
	b.outro += text
}

// Removes leading and trailing whitespace from the rendered output
func (b *Bundle) Trim() {
	b.trimmed = true
}

func (b *Bundle) chunks() []chunk {
	var chunks []chunk
	if b.intro != "" {
		chunks = append(chunks, chunk{text: b.intro})
	}
	for i, p := range b.parts {
		if i > 0 && p.separator != "" {
			chunks = append(chunks, chunk{text: p.separator})
		}
		chunks = p.buffer.appendChunks(chunks)
	}
	if b.outro != "" {
		chunks = append(chunks, chunk{text: b.outro})
	}
	if b.trimmed {
		chunks = trimChunks(chunks)
	}
	return chunks
}

const whitespace = " \t\r\n"

func trimChunks(chunks []chunk) []chunk {
	for len(chunks) > 0 {
		first := &chunks[0]
		trimmed := strings.TrimLeft(first.text, whitespace)
		if first.verbatim {
			first.original += len(first.text) - len(trimmed)
		}
		first.text = trimmed
		if trimmed != "" {
			break
		}
		chunks = chunks[1:]
	}
	for len(chunks) > 0 {
		last := &chunks[len(chunks)-1]
		last.text = strings.TrimRight(last.text, whitespace)
		if last.text != "" {
			break
		}
		chunks = chunks[:len(chunks)-1]
	}
	return chunks
}

func (b *Bundle) String() string {
	j := helpers.Joiner{}
	for _, c := range b.chunks() {
		j.AddString(c.text)
	}
	return j.Done()
}

type MapOptions struct {
	// The name of the generated file
	File string

	// Embed the original text of each source in "sourcesContent"
	IncludeContent bool

	// Maps a source name to the path stored in "sources". Names are used
	// unchanged when this is nil.
	SourcePath func(name string) string
}

// Mappings are emitted at the start of every output chunk that came from a
// source and at the start of every line inside verbatim chunks
func (b *Bundle) GenerateMap(options MapOptions) *sourcemap.SourceMap {
	sm := &sourcemap.SourceMap{File: options.File}
	sourceIndices := make(map[*Source]int32)
	generated := sourcemap.LineColumnOffset{}

	addMapping := func(source *Source, offset int) {
		index, ok := sourceIndices[source]
		if !ok {
			index = int32(len(sm.Sources))
			sourceIndices[source] = index
			name := source.Name
			if options.SourcePath != nil {
				name = options.SourcePath(name)
			}
			sm.Sources = append(sm.Sources, name)
			if options.IncludeContent {
				sm.SourcesContent = append(sm.SourcesContent, source.Contents)
			}
		}
		line, column := source.LineColumn(offset)
		sm.Mappings = append(sm.Mappings, sourcemap.Mapping{
			GeneratedLine:   int32(generated.Lines),
			GeneratedColumn: int32(generated.Columns),
			SourceIndex:     index,
			OriginalLine:    line,
			OriginalColumn:  column,
		})
	}

	for _, c := range b.chunks() {
		if c.source == nil {
			generated.AdvanceString(c.text)
			continue
		}
		if !c.verbatim {
			addMapping(c.source, c.original)
			generated.AdvanceString(c.text)
			continue
		}

		// Map each line of verbatim text separately
		text := c.text
		offset := c.original
		for text != "" {
			addMapping(c.source, offset)
			end := nextLineStart(text)
			generated.AdvanceString(text[:end])
			text = text[end:]
			offset += end
		}
	}

	return sm
}

func nextLineStart(text string) int {
	for i, c := range text {
		switch c {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				return i + 2
			}
			return i + 1
		case '\n':
			return i + 1
		case '\u2028', '\u2029':
			return i + 3
		}
	}
	return len(text)
}
