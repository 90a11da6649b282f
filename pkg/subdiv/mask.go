package subdiv

import "math"

// primvar is anything the refinement masks can accumulate: vectors for
// direct interpolation and stencils for the symbolic expansion.
type primvar[T any] interface {
	*T
	Clear()
	AddWithWeight(src *T, weight float32)
}

// interpolate applies one level of Catmull-Clark masks. src holds one value
// per vertex of parent, dst one value per vertex of the child level.
func interpolate[T any, P primvar[T]](parent *level, src, dst []T) {
	faceCount := parent.faceCount()
	edgeCount := parent.edgeCount()

	// Face points: average of the corners.
	for f := 0; f < faceCount; f++ {
		d := P(&dst[parent.faceChild(f)])
		d.Clear()
		verts := parent.faceVertices(f)
		w := 1 / float32(len(verts))
		for _, v := range verts {
			d.AddWithWeight(&src[v], w)
		}
	}

	// Edge points read the face points computed above.
	for e := 0; e < edgeCount; e++ {
		d := P(&dst[parent.edgeChild(e)])
		d.Clear()
		ev := parent.edgeVerts[e]
		if parent.edgeSharp[e] {
			d.AddWithWeight(&src[ev[0]], 0.5)
			d.AddWithWeight(&src[ev[1]], 0.5)
			continue
		}
		d.AddWithWeight(&src[ev[0]], 0.25)
		d.AddWithWeight(&src[ev[1]], 0.25)
		for _, f := range parent.edgeFaceList(e) {
			d.AddWithWeight(&dst[parent.faceChild(f)], 0.25)
		}
	}

	// Vertex points.
	for v := 0; v < parent.vertexCount; v++ {
		d := P(&dst[parent.vertexChild(v)])
		d.Clear()
		tag := parent.vertTags[v]
		edges := parent.vertexEdges(v)

		switch tag.rule {
		case RuleCrease:
			d.AddWithWeight(&src[v], 0.75)
			d.AddWithWeight(&src[parent.otherEnd(edges[tag.creaseA], v)], 0.125)
			d.AddWithWeight(&src[parent.otherEnd(edges[tag.creaseB], v)], 0.125)
		case RuleSmooth, RuleDart:
			faces := parent.vertexFaces(v)
			n := float32(len(faces))
			d.AddWithWeight(&src[v], (n-2)/n)
			w := 1 / (n * n)
			for _, e := range edges {
				d.AddWithWeight(&src[parent.otherEnd(e, v)], w)
			}
			for _, f := range faces {
				d.AddWithWeight(&dst[parent.faceChild(f)], w)
			}
		default:
			d.AddWithWeight(&src[v], 1)
		}
	}
}

// addFaceOpposite accumulates the vertex diagonally opposite corner k of
// face f. Non-quads have no opposite vertex; their centroid stands in.
func addFaceOpposite[T any, P primvar[T]](l *level, d P, src []T, f, k int, weight float32) {
	if weight == 0 {
		return
	}
	verts := l.faceVertices(f)
	if len(verts) == 4 {
		d.AddWithWeight(&src[verts[(k+2)%4]], weight)
		return
	}
	w := weight / float32(len(verts))
	for _, v := range verts {
		d.AddWithWeight(&src[v], w)
	}
}

// limit evaluates the limit position and both tangents of every vertex of
// l from the values src attached to l.
func limit[T any, P primvar[T]](l *level, src, pos, tan1, tan2 []T) {
	for v := 0; v < l.vertexCount; v++ {
		p, t1, t2 := P(&pos[v]), P(&tan1[v]), P(&tan2[v])
		p.Clear()
		t1.Clear()
		t2.Clear()

		tag := l.vertTags[v]
		switch {
		case tag.rule == RuleCrease:
			limitCrease[T, P](l, v, src, p, t1, t2)
		case tag.rule == RuleSmooth || tag.rule == RuleDart:
			smoothPosition[T, P](l, v, src, p)
			if len(l.vertexFaces(v)) == 2 {
				// The cosine masks vanish at valence 2.
				limitCornerTangents[T, P](l, v, src, t1, t2)
				continue
			}
			smoothTangents[T, P](l, v, src, t1, t2)
		default:
			p.AddWithWeight(&src[v], 1)
			limitCornerTangents[T, P](l, v, src, t1, t2)
		}
	}
}

// smoothPosition applies (n^2 v + 4 sum(e) + sum(d)) / (n (n+5)).
func smoothPosition[T any, P primvar[T]](l *level, v int, src []T, p P) {
	faces := l.vertexFaces(v)
	corners := l.vertexFaceCorners(v)
	n := float32(len(faces))
	denom := n * (n + 5)

	p.AddWithWeight(&src[v], n*n/denom)
	for _, e := range l.vertexEdges(v) {
		p.AddWithWeight(&src[l.otherEnd(e, v)], 4/denom)
	}
	for i, f := range faces {
		addFaceOpposite[T, P](l, p, src, f, corners[i], 1/denom)
	}
}

// smoothTangents uses the cosine masks of the subdominant eigenvectors.
// Edge i and face i (between edges i and i+1) are weighted by
// A*cos(i*theta) and cos(i*theta)+cos((i+1)*theta); the second tangent is
// the first rotated one step around the ring.
func smoothTangents[T any, P primvar[T]](l *level, v int, src []T, t1, t2 P) {
	faces := l.vertexFaces(v)
	corners := l.vertexFaceCorners(v)
	edges := l.vertexEdges(v)
	n := len(faces)

	edgeW := make([]float32, n)
	faceW := make([]float32, n)
	if n == 4 {
		copy(edgeW, []float32{4, 0, -4, 0})
		copy(faceW, []float32{1, -1, -1, 1})
	} else {
		theta := 2 * math.Pi / float64(n)
		a := 1 + math.Cos(theta) + math.Cos(theta/2)*math.Sqrt(2*(9+math.Cos(theta)))
		for i := 0; i < n; i++ {
			ci := math.Cos(float64(i) * theta)
			cNext := math.Cos(float64(i+1) * theta)
			edgeW[i] = float32(a * ci)
			faceW[i] = float32(ci + cNext)
		}
	}

	for i := 0; i < n; i++ {
		prev := (i + n - 1) % n
		other := &src[l.otherEnd(edges[i], v)]
		t1.AddWithWeight(other, edgeW[i])
		t2.AddWithWeight(other, edgeW[prev])
		addFaceOpposite[T, P](l, t1, src, faces[i], corners[i], faceW[i])
		addFaceOpposite[T, P](l, t2, src, faces[i], corners[i], faceW[prev])
	}
}

// limitCrease evaluates a vertex on a boundary or sharp crease: position
// 2/3 v + 1/6 of each crease neighbour, the first tangent along the crease
// and the second across it, towards the ring between the crease edges.
func limitCrease[T any, P primvar[T]](l *level, v int, src []T, p, t1, t2 P) {
	tag := l.vertTags[v]
	edges := l.vertexEdges(v)
	a := &src[l.otherEnd(edges[tag.creaseA], v)]
	b := &src[l.otherEnd(edges[tag.creaseB], v)]

	p.AddWithWeight(&src[v], 2.0/3.0)
	p.AddWithWeight(a, 1.0/6.0)
	p.AddWithWeight(b, 1.0/6.0)

	t1.AddWithWeight(a, 1)
	t1.AddWithWeight(b, -1)

	k := tag.creaseB - tag.creaseA
	if k == 1 {
		t2.AddWithWeight(a, 0.5)
		t2.AddWithWeight(b, 0.5)
		t2.AddWithWeight(&src[v], -1)
		return
	}
	var total float32
	for i := 1; i < k; i++ {
		w := float32(math.Sin(float64(i) * math.Pi / float64(k)))
		t2.AddWithWeight(&src[l.otherEnd(edges[tag.creaseA+i], v)], w)
		total += w
	}
	t2.AddWithWeight(&src[v], -total)
}

// limitCornerTangents spans the tangent plane with the first and last
// edge of the ring.
func limitCornerTangents[T any, P primvar[T]](l *level, v int, src []T, t1, t2 P) {
	edges := l.vertexEdges(v)
	if len(edges) == 0 {
		return
	}
	t1.AddWithWeight(&src[l.otherEnd(edges[0], v)], 1)
	t1.AddWithWeight(&src[v], -1)
	if len(edges) == 1 {
		return
	}
	t2.AddWithWeight(&src[l.otherEnd(edges[len(edges)-1], v)], 1)
	t2.AddWithWeight(&src[v], -1)
}
