package source

import (
	"bytes"
	"fmt"
	"sort"
)

// editBuffer accumulates byte-range edits against an immutable original and
// applies them in one pass. Offsets always refer to the original bytes, so
// edits recorded from a single parse never invalidate each other.
type editBuffer struct {
	src   []byte
	edits []edit
}

type edit struct {
	start, end int
	text       string
}

func newEditBuffer(src []byte) *editBuffer {
	return &editBuffer{src: src}
}

func (b *editBuffer) insert(at int, text string) {
	b.edits = append(b.edits, edit{start: at, end: at, text: text})
}

func (b *editBuffer) replace(start, end int, text string) {
	b.edits = append(b.edits, edit{start: start, end: end, text: text})
}

func (b *editBuffer) empty() bool {
	return len(b.edits) == 0
}

// bytes applies all recorded edits. Edits must not overlap.
func (b *editBuffer) bytes() ([]byte, error) {
	edits := make([]edit, len(b.edits))
	copy(edits, b.edits)
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var out bytes.Buffer
	prev := 0
	for _, e := range edits {
		if e.start < prev || e.end < e.start || e.end > len(b.src) {
			return nil, fmt.Errorf("invalid edit range [%d,%d)", e.start, e.end)
		}
		out.Write(b.src[prev:e.start])
		out.WriteString(e.text)
		prev = e.end
	}
	out.Write(b.src[prev:])
	return out.Bytes(), nil
}
