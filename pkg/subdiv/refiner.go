// Package subdiv implements uniform Catmull-Clark refinement of quad and
// triangle control cages.
//
// A Refiner builds every level of the hierarchy once at construction.
// Values attached to control vertices can then be refined one level at a
// time, pushed to the limit surface, or expanded into stencils: sparse
// weight vectors over the control vertices that reproduce the same result
// when applied directly.
//
// Topology queries are safe for concurrent use. Stencils are computed on
// first use and cached without locking; call Warm before sharing a Refiner
// between goroutines that request stencils.
package subdiv

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/subdiv/pkg/packed"
)

// Refiner owns a refined level hierarchy and its cached stencils.
type Refiner struct {
	levels   []*level
	boundary BoundaryInterpolation
	log      *zap.Logger

	levelStencils   []Stencil
	limitStencils   []Stencil
	limitDuStencils []Stencil
	limitDvStencils []Stencil
}

// New builds the control cage from faces and refines it uniformly.
// Triangles use the sentinel encoding (Index2 == Index3).
func New(vertexCount int, faces []Quad, opts ...Option) (*Refiner, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.level < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, o.level)
	}
	if vertexCount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVertexCount, vertexCount)
	}
	if o.boundary < BoundaryNone || o.boundary > BoundaryEdgeAndCorner {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBoundary, int(o.boundary))
	}

	faceOffsets, faceVerts, err := packFaces(vertexCount, faces)
	if err != nil {
		return nil, err
	}
	creases, err := creaseSet(vertexCount, o.creases)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	r := &Refiner{
		levels:   make([]*level, 0, o.level+1),
		boundary: o.boundary,
		log:      o.logger,
	}
	r.levels = append(r.levels, newLevel(vertexCount, faceOffsets, faceVerts, creases, o.boundary))
	for i := 1; i <= o.level; i++ {
		r.levels = append(r.levels, refineTopology(r.levels[i-1], o.boundary))
	}

	finest := r.finest()
	r.log.Debug("built refinement hierarchy",
		zap.Int("levels", o.level),
		zap.Stringer("boundary", o.boundary),
		zap.Int("controlVertices", vertexCount),
		zap.Int("controlFaces", len(faces)),
		zap.Int("vertices", finest.vertexCount),
		zap.Int("faces", finest.faceCount()),
		zap.Duration("elapsed", time.Since(start)))

	return r, nil
}

// NewFromTopology is New for a Topology value.
func NewFromTopology(t Topology, opts ...Option) (*Refiner, error) {
	return New(t.VertexCount, t.Faces, opts...)
}

// packFaces validates the control faces and converts them into the packed
// variable-arity form.
func packFaces(vertexCount int, faces []Quad) ([]int, []int, error) {
	faceOffsets := make([]int, len(faces)+1)
	faceVerts := make([]int, 0, SideCount*len(faces))

	for f, q := range faces {
		verts := q.vertices()
		for i, v := range verts {
			if v < 0 || v >= vertexCount {
				return nil, nil, fmt.Errorf("%w: face %d corner %d is %d, vertex count %d",
					ErrInvalidVertexIndex, f, i, v, vertexCount)
			}
			for _, w := range verts[:i] {
				if w == v {
					return nil, nil, fmt.Errorf("%w: face %d %s repeats vertex %d", ErrDegenerateFace, f, q, v)
				}
			}
		}
		faceVerts = append(faceVerts, verts...)
		faceOffsets[f+1] = len(faceVerts)
	}
	return faceOffsets, faceVerts, nil
}

func creaseSet(vertexCount int, edges [][2]int) (map[uint64]struct{}, error) {
	set := make(map[uint64]struct{}, len(edges))
	for i, e := range edges {
		if e[0] < 0 || e[0] >= vertexCount || e[1] < 0 || e[1] >= vertexCount || e[0] == e[1] {
			return nil, fmt.Errorf("%w: crease %d (%d, %d)", ErrInvalidCrease, i, e[0], e[1])
		}
		set[edgeKey(e[0], e[1])] = struct{}{}
	}
	return set, nil
}

func (r *Refiner) level(idx int) *level {
	if idx < 0 || idx >= len(r.levels) {
		panic(fmt.Sprintf("subdiv: level %d outside [0, %d]", idx, r.MaxLevel()))
	}
	return r.levels[idx]
}

func (r *Refiner) finest() *level {
	return r.levels[len(r.levels)-1]
}

// MaxLevel returns the finest level index.
func (r *Refiner) MaxLevel() int {
	return len(r.levels) - 1
}

// BoundaryInterpolation returns the boundary mode the hierarchy was built
// with.
func (r *Refiner) BoundaryInterpolation() BoundaryInterpolation {
	return r.boundary
}

// FaceCount returns the number of faces at level.
func (r *Refiner) FaceCount(level int) int {
	return r.level(level).faceCount()
}

// VertexCount returns the number of vertices at level.
func (r *Refiner) VertexCount(level int) int {
	return r.level(level).vertexCount
}

// EdgeCount returns the number of edges at level.
func (r *Refiner) EdgeCount(level int) int {
	return r.level(level).edgeCount()
}

// FillFaces writes the faces of level into quads. Control-cage triangles
// are written back in the sentinel encoding; refined faces are quads.
func (r *Refiner) FillFaces(level int, quads []Quad) {
	l := r.level(level)
	count := l.faceCount()
	mustFit("faces", len(quads), count)

	for f := 0; f < count; f++ {
		v := l.faceVertices(f)
		if len(v) == 3 {
			quads[f] = Tri(v[0], v[1], v[2])
		} else {
			quads[f] = Quad{v[0], v[1], v[2], v[3]}
		}
	}
}

// Topology returns the vertex count and faces of level.
func (r *Refiner) Topology(level int) Topology {
	faces := make([]Quad, r.FaceCount(level))
	r.FillFaces(level, faces)
	return Topology{VertexCount: r.VertexCount(level), Faces: faces}
}

// FillFaceMap writes, for every face of the finest level, the index of the
// control face it descends from.
func (r *Refiner) FillFaceMap(faceMap []int) {
	finest := r.finest()
	count := finest.faceCount()
	mustFit("face map", len(faceMap), count)

	for f := 0; f < count; f++ {
		parent := f
		for lvl := r.MaxLevel(); lvl > 0; lvl-- {
			parent = r.levels[lvl].faceParents[parent]
		}
		faceMap[f] = parent
	}
}

// FaceMap returns the control face of every finest-level face.
func (r *Refiner) FaceMap() []int {
	faceMap := make([]int, r.finest().faceCount())
	r.FillFaceMap(faceMap)
	return faceMap
}

// FaceParent returns the face of level-1 that face f of level was split
// from.
func (r *Refiner) FaceParent(level, f int) int {
	if level == 0 {
		panic("subdiv: control faces have no parent")
	}
	return r.level(level).faceParents[f]
}

// FillAdjacentVertices writes, for every finest-level vertex, the far end
// of each incident edge. adjacent needs 2*EdgeCount(MaxLevel()) entries.
func (r *Refiner) FillAdjacentVertices(segments []ArraySegment, adjacent []int) {
	l := r.finest()
	mustFit("adjacency segments", len(segments), l.vertexCount)
	mustFit("adjacent vertices", len(adjacent), 2*l.edgeCount())

	offset := 0
	for v := 0; v < l.vertexCount; v++ {
		edges := l.vertexEdges(v)
		segments[v] = ArraySegment{Offset: offset, Count: len(edges)}
		for _, e := range edges {
			adjacent[offset] = l.otherEnd(e, v)
			offset++
		}
	}
}

// FillVertexRules writes the rule of every finest-level vertex.
func (r *Refiner) FillVertexRules(rules []VertexRule) {
	l := r.finest()
	mustFit("vertex rules", len(rules), l.vertexCount)
	for v := 0; v < l.vertexCount; v++ {
		rules[v] = l.vertTags[v].rule
	}
}

// VertexRules returns the rule of every finest-level vertex.
func (r *Refiner) VertexRules() []VertexRule {
	rules := make([]VertexRule, r.finest().vertexCount)
	r.FillVertexRules(rules)
	return rules
}

// VertexRule returns the rule of vertex v at level.
func (r *Refiner) VertexRule(level, v int) VertexRule {
	return r.level(level).vertTags[v].rule
}

func mustFit(what string, have, need int) {
	if have < need {
		panic(fmt.Sprintf("subdiv: %s buffer holds %d entries, need %d", what, have, need))
	}
}

// AdjacentVertices returns the finest-level vertex adjacency as packed
// lists. A vertex appears once per connecting edge.
func (r *Refiner) AdjacentVertices() packed.Lists[int] {
	l := r.finest()
	segments := make([]ArraySegment, l.vertexCount)
	elems := make([]int, 2*l.edgeCount())
	r.FillAdjacentVertices(segments, elems)
	return packed.New(segments, elems)
}
