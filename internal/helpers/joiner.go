package helpers

import "strings"

// This provides an efficient way to join lots of big strings together. It
// avoids the cost of repeatedly reallocating as the buffer grows by measuring
// exactly how big the buffer should be and then allocating once.
type Joiner struct {
	parts    []string
	length   int
	lastByte byte
}

func (j *Joiner) AddString(data string) {
	if len(data) == 0 {
		return
	}
	j.lastByte = data[len(data)-1]
	j.parts = append(j.parts, data)
	j.length += len(data)
}

func (j *Joiner) Length() int {
	return j.length
}

func (j *Joiner) EnsureNewlineAtEnd() {
	if j.length > 0 && j.lastByte != '\n' {
		j.AddString("\n")
	}
}

func (j *Joiner) Done() string {
	if len(j.parts) == 1 {
		// No need to allocate if there was only a single string written
		return j.parts[0]
	}
	sb := strings.Builder{}
	sb.Grow(j.length)
	for _, part := range j.parts {
		sb.WriteString(part)
	}
	return sb.String()
}
