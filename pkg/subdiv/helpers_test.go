package subdiv

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/subdiv/pkg/math"
)

// gridMesh returns an nx by ny lattice of unit quads in the XY plane,
// wound counter-clockwise when viewed from +Z.
func gridMesh(nx, ny int) ([]math.Vec3, []Quad) {
	var positions []math.Vec3
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			positions = append(positions, math.Vec3{X: float32(i), Y: float32(j)})
		}
	}

	idx := func(i, j int) int { return j*(nx+1) + i }
	var faces []Quad
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			faces = append(faces, Quad{idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)})
		}
	}
	return positions, faces
}

// cubeMesh returns a closed cube centred on the origin with outward
// facing quads.
func cubeMesh() ([]math.Vec3, []Quad) {
	positions := []math.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	faces := []Quad{
		{0, 3, 2, 1},
		{4, 5, 6, 7},
		{0, 1, 5, 4},
		{3, 7, 6, 2},
		{0, 4, 7, 3},
		{1, 2, 6, 5},
	}
	return positions, faces
}

// mixedMesh returns a quad with a triangle attached to its right edge.
func mixedMesh() ([]math.Vec3, []Quad) {
	positions := []math.Vec3{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 2, Y: 0.5, Z: 0.5},
	}
	faces := []Quad{
		{0, 1, 2, 3},
		Tri(1, 4, 2),
	}
	return positions, faces
}

// pyramidMesh is a closed square pyramid: one quad base and four
// triangles, giving a valence-4 apex and valence-3 base corners.
func pyramidMesh() ([]math.Vec3, []Quad) {
	positions := []math.Vec3{
		{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}, {Z: 1.5},
	}
	faces := []Quad{
		{0, 3, 2, 1},
		Tri(0, 1, 4),
		Tri(1, 2, 4),
		Tri(2, 3, 4),
		Tri(3, 0, 4),
	}
	return positions, faces
}

func mustNew(t *testing.T, vertexCount int, faces []Quad, opts ...Option) *Refiner {
	t.Helper()
	r, err := New(vertexCount, faces, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func approxEqual(a, b, tol float32) bool {
	scale := float32(gomath.Max(1, gomath.Max(gomath.Abs(float64(a)), gomath.Abs(float64(b)))))
	return gomath.Abs(float64(a-b)) <= float64(tol*scale)
}

func vecApproxEqual(a, b math.Vec3, tol float32) bool {
	return approxEqual(a.X, b.X, tol) && approxEqual(a.Y, b.Y, tol) && approxEqual(a.Z, b.Z, tol)
}

// pseudoRandomValues returns deterministic, non-degenerate test data.
func pseudoRandomValues(n int) []math.Vec3 {
	out := make([]math.Vec3, n)
	seed := uint32(12345)
	next := func() float32 {
		seed = seed*1664525 + 1013904223
		return float32(seed>>8)/float32(1<<24)*2 - 1
	}
	for i := range out {
		out[i] = math.Vec3{X: next(), Y: next(), Z: next()}
	}
	return out
}

type meshCase struct {
	name      string
	positions []math.Vec3
	faces     []Quad
}

func testMeshes() []meshCase {
	var cases []meshCase
	add := func(name string, positions []math.Vec3, faces []Quad) {
		cases = append(cases, meshCase{name, positions, faces})
	}
	p, f := gridMesh(3, 2)
	add("grid", p, f)
	p, f = cubeMesh()
	add("cube", p, f)
	p, f = mixedMesh()
	add("mixed", p, f)
	p, f = pyramidMesh()
	add("pyramid", p, f)
	return cases
}

var allBoundaryModes = []BoundaryInterpolation{BoundaryNone, BoundaryEdgeOnly, BoundaryEdgeAndCorner}
