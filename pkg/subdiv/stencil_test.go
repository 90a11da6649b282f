package subdiv

import (
	"reflect"
	"testing"
)

func TestStencilInit(t *testing.T) {
	var s Stencil
	s.Init(7)

	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
	if s.Weight(7) != 1 {
		t.Errorf("Weight(7) = %v, want 1", s.Weight(7))
	}
	if s.Weight(3) != 0 {
		t.Errorf("Weight(3) = %v, want 0 for unseen index", s.Weight(3))
	}
}

func TestStencilAddWithWeightMerges(t *testing.T) {
	var a, b, acc Stencil
	a.Init(2)
	b.Init(5)

	acc.AddWithWeight(&a, 0.5)
	acc.AddWithWeight(&b, 0.25)
	acc.AddWithWeight(&a, 0.25)

	want := []WeightedIndex{{Index: 2, Weight: 0.75}, {Index: 5, Weight: 0.25}}
	if !reflect.DeepEqual(acc.Entries(), want) {
		t.Errorf("entries = %v, want %v", acc.Entries(), want)
	}
	if acc.Sum() != 1 {
		t.Errorf("Sum() = %v, want 1", acc.Sum())
	}
}

func TestStencilAddWithWeightKeepsOrder(t *testing.T) {
	var acc Stencil
	for _, idx := range []int{9, 1, 4, 1, 9, 0} {
		var s Stencil
		s.Init(idx)
		acc.AddWithWeight(&s, 1)
	}

	entries := acc.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Index >= entries[i].Index {
			t.Fatalf("entries not strictly increasing: %v", entries)
		}
	}
	if acc.Len() != 4 {
		t.Errorf("expected 4 distinct indices, got %d", acc.Len())
	}
	if acc.Weight(1) != 2 || acc.Weight(9) != 2 {
		t.Errorf("duplicate contributions not merged: %v", entries)
	}
}

func TestStencilZeroWeightAddsNothing(t *testing.T) {
	var a, acc Stencil
	a.Init(3)
	acc.AddWithWeight(&a, 0)

	if acc.Len() != 0 {
		t.Errorf("zero weight created entries: %v", acc.Entries())
	}
}

func TestStencilMergeAndClear(t *testing.T) {
	var a, b Stencil
	a.Init(1)
	b.Init(1)
	b.AddWithWeight(&a, 2)

	a.Merge(&b)
	if a.Weight(1) != 4 {
		t.Errorf("Weight(1) after merge = %v, want 4", a.Weight(1))
	}

	a.Clear()
	if a.Len() != 0 || a.Sum() != 0 {
		t.Errorf("Clear() left %v", a.Entries())
	}
}
