package subdiv

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/subdiv/pkg/math"
	"github.com/Faultbox/subdiv/pkg/packed"
)

// ensureLevelStencils expands every finest-level vertex over the control
// vertices by pushing identity stencils through the refinement masks.
func (r *Refiner) ensureLevelStencils() {
	if r.levelStencils != nil {
		return
	}
	start := time.Now()

	stencils := make([]Stencil, r.levels[0].vertexCount)
	for i := range stencils {
		stencils[i].Init(i)
	}
	for lvl := 1; lvl <= r.MaxLevel(); lvl++ {
		refined := make([]Stencil, r.levels[lvl].vertexCount)
		interpolate(r.levels[lvl-1], stencils, refined)
		stencils = refined
	}
	r.levelStencils = stencils

	r.log.Debug("computed stencils",
		zap.Stringer("kind", LevelStencils),
		zap.Int("vertices", len(stencils)),
		zap.Duration("elapsed", time.Since(start)))
}

// ensureLimitStencils applies the limit masks to the level stencils,
// producing the position and both tangent families in one pass.
func (r *Refiner) ensureLimitStencils() {
	if r.limitStencils != nil {
		return
	}
	r.ensureLevelStencils()
	start := time.Now()

	n := len(r.levelStencils)
	pos := make([]Stencil, n)
	du := make([]Stencil, n)
	dv := make([]Stencil, n)
	limit(r.finest(), r.levelStencils, pos, du, dv)
	r.limitStencils, r.limitDuStencils, r.limitDvStencils = pos, du, dv

	r.log.Debug("computed stencils",
		zap.Stringer("kind", LimitStencils),
		zap.Int("vertices", n),
		zap.Duration("elapsed", time.Since(start)))
}

// stencils returns the cached family for kind, computing it on first use.
func (r *Refiner) stencils(kind StencilKind) []Stencil {
	switch kind {
	case LevelStencils:
		r.ensureLevelStencils()
		return r.levelStencils
	case LimitStencils:
		r.ensureLimitStencils()
		return r.limitStencils
	case LimitDuStencils:
		r.ensureLimitStencils()
		return r.limitDuStencils
	case LimitDvStencils:
		r.ensureLimitStencils()
		return r.limitDvStencils
	default:
		panic(fmt.Errorf("subdiv: %w: %d", ErrUnknownStencilKind, int(kind)))
	}
}

// Warm computes every stencil family. After Warm returns the Refiner is
// read-only and may be shared between goroutines.
func (r *Refiner) Warm() {
	r.ensureLimitStencils()
}

// Stencil returns the stencil of finest-level vertex v. The result must not
// be modified.
func (r *Refiner) Stencil(kind StencilKind, v int) *Stencil {
	return &r.stencils(kind)[v]
}

// StencilWeightCount returns the number of (vertex, control index) pairs
// across all stencils of kind, the size FillStencils needs for weights.
func (r *Refiner) StencilWeightCount(kind StencilKind) int {
	stencils := r.stencils(kind)
	count := 0
	for i := range stencils {
		count += stencils[i].Len()
	}
	return count
}

// FillStencils serializes the stencils of kind: one segment per
// finest-level vertex, each pointing at its entries in weights. Entries of
// a stencil are ordered by control index.
func (r *Refiner) FillStencils(kind StencilKind, segments []ArraySegment, weights []WeightedIndex) {
	stencils := r.stencils(kind)
	mustFit("stencil segments", len(segments), len(stencils))

	offset := 0
	for i := range stencils {
		entries := stencils[i].Entries()
		mustFit("stencil weights", len(weights)-offset, len(entries))
		segments[i] = ArraySegment{Offset: offset, Count: len(entries)}
		offset += copy(weights[offset:], entries)
	}
}

// Stencils returns the stencils of kind as packed lists.
func (r *Refiner) Stencils(kind StencilKind) packed.Lists[WeightedIndex] {
	segments := make([]ArraySegment, r.finest().vertexCount)
	weights := make([]WeightedIndex, r.StencilWeightCount(kind))
	r.FillStencils(kind, segments, weights)
	return packed.New(segments, weights)
}

// applyStencils evaluates packed stencils against control values.
func applyStencils[T any, P primvar[T]](stencils packed.Lists[WeightedIndex], control []T) []T {
	out := make([]T, stencils.Len())
	for i := range out {
		d := P(&out[i])
		d.Clear()
		for _, w := range stencils.Elements(i) {
			d.AddWithWeight(&control[w.Index], w.Weight)
		}
	}
	return out
}

// ApplyStencils3 evaluates stencils against 3D control values.
func ApplyStencils3(stencils packed.Lists[WeightedIndex], control []math.Vec3) []math.Vec3 {
	return applyStencils(stencils, control)
}

// ApplyStencils2 evaluates stencils against 2D control values.
func ApplyStencils2(stencils packed.Lists[WeightedIndex], control []math.Vec2) []math.Vec2 {
	return applyStencils(stencils, control)
}
