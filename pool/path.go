// Package pool provides sync.Pool wrappers for reducing GC pressure.
package pool

import (
	"strconv"
	"sync"
)

// PathBuilder builds dotted property paths ("address.city", "name[0].given")
// in a reusable byte buffer.
type PathBuilder struct {
	buf []byte
}

var pathBuilderPool = sync.Pool{
	New: func() any {
		return &PathBuilder{
			buf: make([]byte, 0, 128),
		}
	},
}

// AcquirePathBuilder gets a PathBuilder from the pool.
// Call Release() when done to return it to the pool.
func AcquirePathBuilder() *PathBuilder {
	pb := pathBuilderPool.Get().(*PathBuilder)
	pb.Reset()
	return pb
}

// Release returns the PathBuilder to the pool.
func (b *PathBuilder) Release() {
	if b == nil {
		return
	}
	if cap(b.buf) <= 4096 {
		pathBuilderPool.Put(b)
	}
}

// Reset clears the buffer without deallocating.
func (b *PathBuilder) Reset() {
	b.buf = b.buf[:0]
}

// Len returns the current length of the path.
func (b *PathBuilder) Len() int {
	return len(b.buf)
}

// Segment appends a property name, preceded by a dot unless the path is
// empty. Empty segments are skipped.
func (b *PathBuilder) Segment(name string) *PathBuilder {
	if name == "" {
		return b
	}
	if len(b.buf) > 0 {
		b.buf = append(b.buf, '.')
	}
	b.buf = append(b.buf, name...)
	return b
}

// Index appends an element index in brackets [n].
func (b *PathBuilder) Index(i int) *PathBuilder {
	b.buf = append(b.buf, '[')
	b.buf = strconv.AppendInt(b.buf, int64(i), 10)
	b.buf = append(b.buf, ']')
	return b
}

// String returns the built path.
func (b *PathBuilder) String() string {
	return string(b.buf)
}

// JoinPath joins property names with dots, skipping empty ones.
func JoinPath(segments ...string) string {
	switch len(segments) {
	case 0:
		return ""
	case 1:
		return segments[0]
	}

	pb := AcquirePathBuilder()
	defer pb.Release()
	for _, s := range segments {
		pb.Segment(s)
	}
	return pb.String()
}

// IndexPath returns base[i].
func IndexPath(base string, i int) string {
	pb := AcquirePathBuilder()
	defer pb.Release()
	pb.Segment(base).Index(i)
	return pb.String()
}
