package subdiv

// Child vertices of a refined level are numbered face points first, then
// edge points, then vertex points, each block in parent order.

func (l *level) faceChild(f int) int {
	return f
}

func (l *level) edgeChild(e int) int {
	return l.faceCount() + e
}

func (l *level) vertexChild(v int) int {
	return l.faceCount() + l.edgeCount() + v
}

// refineTopology splits every face of the parent into one quad per corner
// and returns the resulting level.
func refineTopology(parent *level, boundary BoundaryInterpolation) *level {
	childVertexCount := parent.faceCount() + parent.edgeCount() + parent.vertexCount
	childFaceCount := len(parent.faceVerts)

	faceOffsets := make([]int, childFaceCount+1)
	faceVerts := make([]int, 0, 4*childFaceCount)
	faceParents := make([]int, 0, childFaceCount)

	for f := 0; f < parent.faceCount(); f++ {
		verts := parent.faceVertices(f)
		edges := parent.faceEdgeList(f)
		n := len(verts)

		for j := 0; j < n; j++ {
			jPrev := (j + n - 1) % n
			quad := [4]int{
				parent.vertexChild(verts[j]),
				parent.edgeChild(edges[j]),
				parent.faceChild(f),
				parent.edgeChild(edges[jPrev]),
			}
			// Children of a quad are rotated so that corner j of the
			// parent stays at corner j of its child.
			if n == 4 {
				quad = [4]int{quad[(4-j)%4], quad[(5-j)%4], quad[(6-j)%4], quad[(7-j)%4]}
			}

			faceVerts = append(faceVerts, quad[:]...)
			faceParents = append(faceParents, f)
			faceOffsets[len(faceParents)] = len(faceVerts)
		}
	}

	creases := make(map[uint64]struct{})
	for e, creased := range parent.edgeCreased {
		if !creased {
			continue
		}
		mid := parent.edgeChild(e)
		ev := parent.edgeVerts[e]
		creases[edgeKey(parent.vertexChild(ev[0]), mid)] = struct{}{}
		creases[edgeKey(mid, parent.vertexChild(ev[1]))] = struct{}{}
	}

	child := newLevel(childVertexCount, faceOffsets, faceVerts, creases, boundary)
	child.faceParents = faceParents
	return child
}
