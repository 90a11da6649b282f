package subdiv

// level is one fully connected topology of the hierarchy. Relations are
// stored as packed index lists: offsets[i]..offsets[i+1] delimits the
// entries of component i.
type level struct {
	vertexCount int

	faceOffsets []int
	faceVerts   []int
	faceEdges   []int // edge k of a face joins corner k and corner k+1
	faceParents []int // nil at level 0

	edgeVerts       [][2]int
	edgeCreased     []bool // sharpened by the caller, inherited by child edges
	edgeSharp       []bool
	edgeFaceOffsets []int
	edgeFaces       []int

	// Vertex rings. For manifold vertices faces and edges are ordered
	// counter-clockwise: face i lies between edge i and edge i+1, and a
	// boundary ring starts and ends on its two boundary edges.
	vertFaceOffsets []int
	vertFaces       []int
	vertFaceCorners []int
	vertEdgeOffsets []int
	vertEdges       []int

	vertTags []vertexTag
}

type vertexTag struct {
	rule        VertexRule
	boundary    bool
	nonManifold bool

	// Ring positions of the two sharp edges of a Crease vertex.
	creaseA, creaseB int
}

func edgeKey(a, b int) uint64 {
	if a > b {
		a, b = b, a
	}
	return uint64(uint32(a))<<32 | uint64(uint32(b))
}

// newLevel derives edges, rings and vertex tags from a packed face list.
// The faces must already be valid: indices in range and no repeated
// corner within a face.
func newLevel(vertexCount int, faceOffsets, faceVerts []int, creases map[uint64]struct{}, boundary BoundaryInterpolation) *level {
	l := &level{
		vertexCount: vertexCount,
		faceOffsets: faceOffsets,
		faceVerts:   faceVerts,
		faceEdges:   make([]int, len(faceVerts)),
	}
	l.buildEdges(creases)
	l.buildVertexRings()
	l.classifyVertices(boundary)
	return l
}

func (l *level) faceCount() int {
	return len(l.faceOffsets) - 1
}

func (l *level) edgeCount() int {
	return len(l.edgeVerts)
}

func (l *level) faceVertices(f int) []int {
	return l.faceVerts[l.faceOffsets[f]:l.faceOffsets[f+1]]
}

func (l *level) faceEdgeList(f int) []int {
	return l.faceEdges[l.faceOffsets[f]:l.faceOffsets[f+1]]
}

func (l *level) edgeFaceList(e int) []int {
	return l.edgeFaces[l.edgeFaceOffsets[e]:l.edgeFaceOffsets[e+1]]
}

func (l *level) vertexFaces(v int) []int {
	return l.vertFaces[l.vertFaceOffsets[v]:l.vertFaceOffsets[v+1]]
}

func (l *level) vertexFaceCorners(v int) []int {
	return l.vertFaceCorners[l.vertFaceOffsets[v]:l.vertFaceOffsets[v+1]]
}

func (l *level) vertexEdges(v int) []int {
	return l.vertEdges[l.vertEdgeOffsets[v]:l.vertEdgeOffsets[v+1]]
}

// otherEnd returns the endpoint of edge e that is not v.
func (l *level) otherEnd(e, v int) int {
	ev := l.edgeVerts[e]
	if ev[0] == v {
		return ev[1]
	}
	return ev[0]
}

func (l *level) buildEdges(creases map[uint64]struct{}) {
	edgeIndex := make(map[uint64]int, len(l.faceVerts))
	faceCount := l.faceCount()

	for f := 0; f < faceCount; f++ {
		verts := l.faceVertices(f)
		base := l.faceOffsets[f]
		for k, a := range verts {
			b := verts[(k+1)%len(verts)]
			key := edgeKey(a, b)
			e, ok := edgeIndex[key]
			if !ok {
				e = len(l.edgeVerts)
				edgeIndex[key] = e
				l.edgeVerts = append(l.edgeVerts, [2]int{a, b})
				_, creased := creases[key]
				l.edgeCreased = append(l.edgeCreased, creased)
			}
			l.faceEdges[base+k] = e
		}
	}

	edgeCount := len(l.edgeVerts)
	l.edgeFaceOffsets = make([]int, edgeCount+1)
	for _, e := range l.faceEdges {
		l.edgeFaceOffsets[e+1]++
	}
	for e := 0; e < edgeCount; e++ {
		l.edgeFaceOffsets[e+1] += l.edgeFaceOffsets[e]
	}

	l.edgeFaces = make([]int, len(l.faceEdges))
	fill := make([]int, edgeCount)
	copy(fill, l.edgeFaceOffsets[:edgeCount])
	for f := 0; f < faceCount; f++ {
		for _, e := range l.faceEdgeList(f) {
			l.edgeFaces[fill[e]] = f
			fill[e]++
		}
	}

	// Boundary and non-manifold edges are always infinitely sharp.
	l.edgeSharp = make([]bool, edgeCount)
	for e := 0; e < edgeCount; e++ {
		n := l.edgeFaceOffsets[e+1] - l.edgeFaceOffsets[e]
		l.edgeSharp[e] = n != 2 || l.edgeCreased[e]
	}
}

func (l *level) buildVertexRings() {
	n := l.vertexCount

	l.vertFaceOffsets = make([]int, n+1)
	for _, v := range l.faceVerts {
		l.vertFaceOffsets[v+1]++
	}
	l.vertEdgeOffsets = make([]int, n+1)
	for _, ev := range l.edgeVerts {
		l.vertEdgeOffsets[ev[0]+1]++
		l.vertEdgeOffsets[ev[1]+1]++
	}
	for v := 0; v < n; v++ {
		l.vertFaceOffsets[v+1] += l.vertFaceOffsets[v]
		l.vertEdgeOffsets[v+1] += l.vertEdgeOffsets[v]
	}

	l.vertFaces = make([]int, len(l.faceVerts))
	l.vertFaceCorners = make([]int, len(l.faceVerts))
	fill := make([]int, n)
	copy(fill, l.vertFaceOffsets[:n])
	for f := 0; f < l.faceCount(); f++ {
		for k, v := range l.faceVertices(f) {
			l.vertFaces[fill[v]] = f
			l.vertFaceCorners[fill[v]] = k
			fill[v]++
		}
	}

	l.vertEdges = make([]int, 2*len(l.edgeVerts))
	copy(fill, l.vertEdgeOffsets[:n])
	for e, ev := range l.edgeVerts {
		for _, v := range ev {
			l.vertEdges[fill[v]] = e
			fill[v]++
		}
	}

	l.vertTags = make([]vertexTag, n)
	for v := 0; v < n; v++ {
		l.orderRing(v)
	}
}

// orderRing sorts the faces and edges around v counter-clockwise. Vertices
// whose neighbourhood is not a single consistently oriented fan keep their
// unordered rings and are tagged non-manifold.
func (l *level) orderRing(v int) {
	tag := &l.vertTags[v]
	faces := l.vertexFaces(v)
	corners := l.vertexFaceCorners(v)
	edges := l.vertexEdges(v)

	if len(faces) == 0 {
		tag.nonManifold = true
		return
	}

	boundaryEdges := 0
	for _, e := range edges {
		switch len(l.edgeFaceList(e)) {
		case 1:
			boundaryEdges++
		case 2:
		default:
			tag.nonManifold = true
			return
		}
	}
	switch {
	case boundaryEdges == 0 && len(edges) == len(faces):
	case boundaryEdges == 2 && len(edges) == len(faces)+1:
		tag.boundary = true
	default:
		tag.boundary = boundaryEdges > 0
		tag.nonManifold = true
		return
	}

	leading := func(i int) int { return l.faceEdgeList(faces[i])[corners[i]] }
	trailing := func(i int) int {
		fe := l.faceEdgeList(faces[i])
		return fe[(corners[i]+len(fe)-1)%len(fe)]
	}

	start := 0
	if tag.boundary {
		start = -1
		for i := range faces {
			if len(l.edgeFaceList(leading(i))) == 1 {
				start = i
				break
			}
		}
		if start < 0 {
			tag.nonManifold = true
			return
		}
	}

	orderedFaces := make([]int, 0, len(faces))
	orderedCorners := make([]int, 0, len(faces))
	orderedEdges := make([]int, 0, len(edges))
	visited := make([]bool, len(faces))

	cur := start
	for {
		visited[cur] = true
		orderedFaces = append(orderedFaces, faces[cur])
		orderedCorners = append(orderedCorners, corners[cur])
		orderedEdges = append(orderedEdges, leading(cur))

		next := trailing(cur)
		adjacent := l.edgeFaceList(next)
		if len(adjacent) == 1 {
			orderedEdges = append(orderedEdges, next)
			break
		}

		other := adjacent[0]
		if other == faces[cur] {
			other = adjacent[1]
		}
		found := -1
		for i := range faces {
			if faces[i] == other && leading(i) == next {
				found = i
				break
			}
		}
		if found < 0 {
			// Opposite winding across this edge.
			tag.nonManifold = true
			return
		}
		if found == start {
			break
		}
		if visited[found] {
			tag.nonManifold = true
			return
		}
		cur = found
	}

	if len(orderedFaces) != len(faces) || len(orderedEdges) != len(edges) {
		// More than one fan meets at v.
		tag.nonManifold = true
		return
	}

	copy(faces, orderedFaces)
	copy(corners, orderedCorners)
	copy(edges, orderedEdges)
}

// classifyVertices assigns the vertex rule from sharp edge counts, in the
// manner of the usual crease rule table: a sharp vertex is a Corner,
// otherwise 0, 1, 2 and more sharp edges give Smooth, Dart, Crease and
// Corner.
func (l *level) classifyVertices(boundary BoundaryInterpolation) {
	for v := 0; v < l.vertexCount; v++ {
		tag := &l.vertTags[v]
		edges := l.vertexEdges(v)

		sharpVertex := tag.nonManifold
		if boundary == BoundaryEdgeAndCorner && len(l.vertexFaces(v)) == 1 && len(edges) == 2 {
			sharpVertex = true
		}

		var sharp []int
		for i, e := range edges {
			if l.edgeSharp[e] {
				sharp = append(sharp, i)
			}
		}

		switch {
		case sharpVertex:
			tag.rule = RuleCorner
		case len(sharp) == 0:
			tag.rule = RuleSmooth
		case len(sharp) == 1:
			tag.rule = RuleDart
		case len(sharp) == 2:
			tag.rule = RuleCrease
			tag.creaseA, tag.creaseB = sharp[0], sharp[1]
		default:
			tag.rule = RuleCorner
		}
	}
}
