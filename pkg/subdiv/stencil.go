package subdiv

// Stencil is a sparse vector over control-cage vertex indices. Entries are
// kept sorted by index with at most one entry per index, so contributions
// from shared ancestors merge instead of duplicating.
//
// Stencils refine exactly like vector primvars: Clear plus repeated
// AddWithWeight is the only operation the refinement masks need.
type Stencil struct {
	entries []WeightedIndex
}

// Init resets the stencil to weight 1 at controlIndex.
func (s *Stencil) Init(controlIndex int) {
	s.entries = append(s.entries[:0], WeightedIndex{Index: controlIndex, Weight: 1})
}

// Clear removes every entry.
func (s *Stencil) Clear() {
	s.entries = s.entries[:0]
}

// AddWithWeight adds weight * src to s. A zero weight adds nothing.
func (s *Stencil) AddWithWeight(src *Stencil, weight float32) {
	if weight == 0 || len(src.entries) == 0 {
		return
	}
	if len(s.entries) == 0 {
		s.entries = make([]WeightedIndex, len(src.entries))
		for i, e := range src.entries {
			s.entries[i] = WeightedIndex{Index: e.Index, Weight: weight * e.Weight}
		}
		return
	}

	merged := make([]WeightedIndex, 0, len(s.entries)+len(src.entries))
	i, j := 0, 0
	for i < len(s.entries) && j < len(src.entries) {
		a, b := s.entries[i], src.entries[j]
		switch {
		case a.Index < b.Index:
			merged = append(merged, a)
			i++
		case a.Index > b.Index:
			merged = append(merged, WeightedIndex{Index: b.Index, Weight: weight * b.Weight})
			j++
		default:
			merged = append(merged, WeightedIndex{Index: a.Index, Weight: a.Weight + weight*b.Weight})
			i++
			j++
		}
	}
	merged = append(merged, s.entries[i:]...)
	for ; j < len(src.entries); j++ {
		b := src.entries[j]
		merged = append(merged, WeightedIndex{Index: b.Index, Weight: weight * b.Weight})
	}
	s.entries = merged
}

// Merge adds every entry of src with its own weight.
func (s *Stencil) Merge(src *Stencil) {
	s.AddWithWeight(src, 1)
}

// Len returns the number of distinct control indices.
func (s *Stencil) Len() int {
	return len(s.entries)
}

// Weight returns the weight of controlIndex, 0 if absent.
func (s *Stencil) Weight(controlIndex int) float32 {
	lo, hi := 0, len(s.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		switch idx := s.entries[mid].Index; {
		case idx == controlIndex:
			return s.entries[mid].Weight
		case idx < controlIndex:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0
}

// Sum returns the sum of all weights.
func (s *Stencil) Sum() float32 {
	var sum float32
	for _, e := range s.entries {
		sum += e.Weight
	}
	return sum
}

// Entries returns the entries in increasing index order. The slice must
// not be modified.
func (s *Stencil) Entries() []WeightedIndex {
	return s.entries
}
