package subdiv

import (
	"fmt"

	"github.com/Faultbox/subdiv/pkg/math"
)

// LimitValues holds limit positions and tangents, one entry per vertex of
// the finest level.
type LimitValues[T any] struct {
	Values    []T
	Tangents1 []T
	Tangents2 []T
}

func fillRefined[T any, P primvar[T]](r *Refiner, level int, src, dst []T) {
	if level < 1 || level > r.MaxLevel() {
		panic(fmt.Sprintf("subdiv: cannot refine into level %d, valid range [1, %d]", level, r.MaxLevel()))
	}
	parent := r.levels[level-1]
	mustFit("previous level values", len(src), parent.vertexCount)
	mustFit("refined values", len(dst), r.levels[level].vertexCount)
	interpolate[T, P](parent, src, dst)
}

func fillLimit[T any, P primvar[T]](r *Refiner, src, pos, tan1, tan2 []T) {
	finest := r.finest()
	if len(src) != finest.vertexCount {
		panic(fmt.Sprintf("subdiv: limit needs %d finest-level values, got %d", finest.vertexCount, len(src)))
	}
	mustFit("limit values", len(pos), len(src))
	mustFit("limit tangents", len(tan1), len(src))
	mustFit("limit tangents", len(tan2), len(src))
	limit[T, P](finest, src, pos, tan1, tan2)
}

// FillRefinedValues3 refines values attached to level-1 into dst, one value
// per vertex of level.
func (r *Refiner) FillRefinedValues3(level int, src, dst []math.Vec3) {
	fillRefined(r, level, src, dst)
}

// FillRefinedValues2 is FillRefinedValues3 for 2D values.
func (r *Refiner) FillRefinedValues2(level int, src, dst []math.Vec2) {
	fillRefined(r, level, src, dst)
}

// Refine3 refines values from level-1 to level.
func (r *Refiner) Refine3(level int, previous []math.Vec3) []math.Vec3 {
	refined := make([]math.Vec3, r.VertexCount(level))
	r.FillRefinedValues3(level, previous, refined)
	return refined
}

// Refine2 refines values from level-1 to level.
func (r *Refiner) Refine2(level int, previous []math.Vec2) []math.Vec2 {
	refined := make([]math.Vec2, r.VertexCount(level))
	r.FillRefinedValues2(level, previous, refined)
	return refined
}

// RefineFully3 refines control values to the finest level.
func (r *Refiner) RefineFully3(control []math.Vec3) []math.Vec3 {
	values := control
	for lvl := 1; lvl <= r.MaxLevel(); lvl++ {
		values = r.Refine3(lvl, values)
	}
	return values
}

// RefineFully2 refines control values to the finest level.
func (r *Refiner) RefineFully2(control []math.Vec2) []math.Vec2 {
	values := control
	for lvl := 1; lvl <= r.MaxLevel(); lvl++ {
		values = r.Refine2(lvl, values)
	}
	return values
}

// FillLimitValues3 evaluates limit positions and tangents from
// finest-level values. All output slices need len(src) entries.
func (r *Refiner) FillLimitValues3(src, pos, tan1, tan2 []math.Vec3) {
	fillLimit(r, src, pos, tan1, tan2)
}

// FillLimitValues2 is FillLimitValues3 for 2D values.
func (r *Refiner) FillLimitValues2(src, pos, tan1, tan2 []math.Vec2) {
	fillLimit(r, src, pos, tan1, tan2)
}

// Limit3 pushes finest-level values to the limit surface.
func (r *Refiner) Limit3(finest []math.Vec3) LimitValues[math.Vec3] {
	lv := LimitValues[math.Vec3]{
		Values:    make([]math.Vec3, len(finest)),
		Tangents1: make([]math.Vec3, len(finest)),
		Tangents2: make([]math.Vec3, len(finest)),
	}
	r.FillLimitValues3(finest, lv.Values, lv.Tangents1, lv.Tangents2)
	return lv
}

// Limit2 pushes finest-level values to the limit surface.
func (r *Refiner) Limit2(finest []math.Vec2) LimitValues[math.Vec2] {
	lv := LimitValues[math.Vec2]{
		Values:    make([]math.Vec2, len(finest)),
		Tangents1: make([]math.Vec2, len(finest)),
		Tangents2: make([]math.Vec2, len(finest)),
	}
	r.FillLimitValues2(finest, lv.Values, lv.Tangents1, lv.Tangents2)
	return lv
}
