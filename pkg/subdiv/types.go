package subdiv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/subdiv/pkg/packed"
)

// Construction errors.
var (
	ErrInvalidLevel       = errors.New("invalid refinement level")
	ErrInvalidVertexCount = errors.New("invalid vertex count")
	ErrInvalidVertexIndex = errors.New("face vertex index out of range")
	ErrDegenerateFace     = errors.New("degenerate face")
	ErrInvalidCrease      = errors.New("invalid crease edge")
	ErrUnknownBoundary    = errors.New("unknown boundary interpolation")
	ErrUnknownStencilKind = errors.New("unknown stencil kind")
)

// ArraySegment locates a per-vertex list inside a flat packed buffer.
type ArraySegment = packed.ArraySegment

// SideCount is the number of indices stored for every face.
const SideCount = 4

// Quad is a face in the flat four-index encoding. A triangle repeats its
// third index in the fourth slot.
type Quad struct {
	Index0 int
	Index1 int
	Index2 int
	Index3 int
}

// Tri returns the sentinel encoding of the triangle (a, b, c).
func Tri(a, b, c int) Quad {
	return Quad{a, b, c, c}
}

// IsTriangle reports whether the quad uses the triangle sentinel.
func (q Quad) IsTriangle() bool {
	return q.Index2 == q.Index3
}

// Corner returns corner idx, wrapping around in both directions.
func (q Quad) Corner(idx int) int {
	idx %= SideCount
	if idx < 0 {
		idx += SideCount
	}
	switch idx {
	case 0:
		return q.Index0
	case 1:
		return q.Index1
	case 2:
		return q.Index2
	default:
		return q.Index3
	}
}

// Flip reverses the winding.
func (q Quad) Flip() Quad {
	return Quad{q.Index3, q.Index2, q.Index1, q.Index0}
}

// Contains reports whether vertexIdx is one of the corners.
func (q Quad) Contains(vertexIdx int) bool {
	return q.Index0 == vertexIdx || q.Index1 == vertexIdx || q.Index2 == vertexIdx || q.Index3 == vertexIdx
}

// Map applies fn to every index.
func (q Quad) Map(fn func(int) int) Quad {
	return Quad{fn(q.Index0), fn(q.Index1), fn(q.Index2), fn(q.Index3)}
}

// Reindex shifts every index by offset.
func (q Quad) Reindex(offset int) Quad {
	return Quad{q.Index0 + offset, q.Index1 + offset, q.Index2 + offset, q.Index3 + offset}
}

// String returns "Quad[a, b, c, d]".
func (q Quad) String() string {
	return fmt.Sprintf("Quad[%d, %d, %d, %d]", q.Index0, q.Index1, q.Index2, q.Index3)
}

// vertices returns the 3 or 4 distinct corners of the face.
func (q Quad) vertices() []int {
	if q.IsTriangle() {
		return []int{q.Index0, q.Index1, q.Index2}
	}
	return []int{q.Index0, q.Index1, q.Index2, q.Index3}
}

// Topology is a vertex count plus a face list.
type Topology struct {
	VertexCount int
	Faces       []Quad
}

// BoundaryInterpolation selects how open boundaries are refined.
type BoundaryInterpolation int

// Boundary interpolation modes.
const (
	BoundaryNone          BoundaryInterpolation = 0
	BoundaryEdgeOnly      BoundaryInterpolation = 1
	BoundaryEdgeAndCorner BoundaryInterpolation = 2
)

// String returns the configuration name of the mode.
func (b BoundaryInterpolation) String() string {
	switch b {
	case BoundaryNone:
		return "none"
	case BoundaryEdgeOnly:
		return "edge-only"
	case BoundaryEdgeAndCorner:
		return "edge-and-corner"
	default:
		return fmt.Sprintf("BoundaryInterpolation(%d)", int(b))
	}
}

// ParseBoundaryInterpolation accepts "none", "edge-only" and
// "edge-and-corner" (case-insensitive, '_' and '-' interchangeable).
func ParseBoundaryInterpolation(s string) (BoundaryInterpolation, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "none":
		return BoundaryNone, nil
	case "edge-only", "edgeonly":
		return BoundaryEdgeOnly, nil
	case "edge-and-corner", "edgeandcorner":
		return BoundaryEdgeAndCorner, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownBoundary, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b BoundaryInterpolation) MarshalText() ([]byte, error) {
	if b < BoundaryNone || b > BoundaryEdgeAndCorner {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBoundary, int(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BoundaryInterpolation) UnmarshalText(text []byte) error {
	v, err := ParseBoundaryInterpolation(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// VertexRule classifies the local subdivision behaviour of a vertex.
type VertexRule int

// Vertex rules. The values form a bitmask.
const (
	RuleUnknown VertexRule = 0
	RuleSmooth  VertexRule = 1 << 0
	RuleDart    VertexRule = 1 << 1
	RuleCrease  VertexRule = 1 << 2
	RuleCorner  VertexRule = 1 << 3
)

// String returns a human-readable rule name.
func (r VertexRule) String() string {
	switch r {
	case RuleUnknown:
		return "Unknown"
	case RuleSmooth:
		return "Smooth"
	case RuleDart:
		return "Dart"
	case RuleCrease:
		return "Crease"
	case RuleCorner:
		return "Corner"
	default:
		return fmt.Sprintf("VertexRule(%d)", int(r))
	}
}

// StencilKind selects which stencil family to compute.
type StencilKind int

// Stencil kinds.
const (
	LevelStencils StencilKind = iota
	LimitStencils
	LimitDuStencils
	LimitDvStencils
)

// String returns the CLI name of the kind.
func (k StencilKind) String() string {
	switch k {
	case LevelStencils:
		return "level"
	case LimitStencils:
		return "limit"
	case LimitDuStencils:
		return "du"
	case LimitDvStencils:
		return "dv"
	default:
		return fmt.Sprintf("StencilKind(%d)", int(k))
	}
}

// ParseStencilKind accepts the names returned by String.
func ParseStencilKind(s string) (StencilKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "level":
		return LevelStencils, nil
	case "limit":
		return LimitStencils, nil
	case "du", "limit-du":
		return LimitDuStencils, nil
	case "dv", "limit-dv":
		return LimitDvStencils, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStencilKind, s)
	}
}

// WeightedIndex is one entry of a serialized stencil.
type WeightedIndex struct {
	Index  int     `yaml:"index"`
	Weight float32 `yaml:"weight"`
}
