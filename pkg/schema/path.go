package schema

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path locates a value inside a document. The empty path is the root.
type Path []Segment

// Key returns a copy of p extended by an object key.
func (p Path) Key(k string) Path {
	return p.push(Segment{Key: k})
}

// Index returns a copy of p extended by an array index.
func (p Path) Index(i int) Path {
	return p.push(Segment{Index: i, IsIndex: true})
}

func (p Path) push(s Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// String renders the path as foo.bar[2]. Keys are written verbatim.
func (p Path) String() string {
	var b strings.Builder
	for _, s := range p {
		if s.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.Index))
			b.WriteByte(']')
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}
