// Package packed stores many variable-length lists in two flat slices.
//
// A Lists value holds one ArraySegment per list, each pointing into a
// shared Elems slice. Segments are laid out in increasing, non-overlapping
// offset order, so the whole structure can be handed to code that expects
// an (offset, count) index buffer plus a values buffer.
package packed

import "fmt"

// ArraySegment locates one list inside the shared element slice.
type ArraySegment struct {
	Offset int
	Count  int
}

// End returns the offset one past the last element of the segment.
func (s ArraySegment) End() int {
	return s.Offset + s.Count
}

// String returns the segment as "[offset:end]".
func (s ArraySegment) String() string {
	return fmt.Sprintf("[%d:%d]", s.Offset, s.End())
}

// Lists is a packed list-of-lists.
type Lists[T any] struct {
	Segments []ArraySegment
	Elems    []T
}

// New wraps existing segment and element slices.
func New[T any](segments []ArraySegment, elems []T) Lists[T] {
	return Lists[T]{Segments: segments, Elems: elems}
}

// MakeEmpty returns count empty lists.
func MakeEmpty[T any](count int) Lists[T] {
	return Lists[T]{Segments: make([]ArraySegment, count), Elems: []T{}}
}

// Pack flattens lists into a single packed structure.
func Pack[T any](lists [][]T) Lists[T] {
	total := 0
	for _, list := range lists {
		total += len(list)
	}

	segments := make([]ArraySegment, len(lists))
	elems := make([]T, 0, total)
	for i, list := range lists {
		segments[i] = ArraySegment{Offset: len(elems), Count: len(list)}
		elems = append(elems, list...)
	}
	return Lists[T]{Segments: segments, Elems: elems}
}

// Concat appends the lists of b after the lists of a.
func Concat[T any](a, b Lists[T]) Lists[T] {
	base := len(a.Elems)

	segments := make([]ArraySegment, 0, len(a.Segments)+len(b.Segments))
	segments = append(segments, a.Segments...)
	for _, s := range b.Segments {
		segments = append(segments, ArraySegment{Offset: base + s.Offset, Count: s.Count})
	}

	elems := make([]T, 0, len(a.Elems)+len(b.Elems))
	elems = append(elems, a.Elems...)
	elems = append(elems, b.Elems...)

	return Lists[T]{Segments: segments, Elems: elems}
}

// Map applies fn to every element, keeping the segment layout.
func Map[T, U any](l Lists[T], fn func(T) U) Lists[U] {
	elems := make([]U, len(l.Elems))
	for i, e := range l.Elems {
		elems[i] = fn(e)
	}
	return Lists[U]{Segments: l.Segments, Elems: elems}
}

// Len returns the number of lists.
func (l Lists[T]) Len() int {
	return len(l.Segments)
}

// Elements returns list i as a subslice of Elems.
func (l Lists[T]) Elements(i int) []T {
	s := l.Segments[i]
	return l.Elems[s.Offset:s.End():s.End()]
}

// Validate checks that segments are ordered, non-overlapping and in range.
func (l Lists[T]) Validate() error {
	next := 0
	for i, s := range l.Segments {
		if s.Count < 0 {
			return fmt.Errorf("segment %d has negative count %d", i, s.Count)
		}
		if s.Offset < next {
			return fmt.Errorf("segment %d %s overlaps previous segment", i, s)
		}
		if s.End() > len(l.Elems) {
			return fmt.Errorf("segment %d %s exceeds %d elements", i, s, len(l.Elems))
		}
		next = s.End()
	}
	return nil
}
