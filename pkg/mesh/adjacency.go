package mesh

// pointFaces maps a point index to the faces that use it, in ascending face
// order and without repeats.
type pointFaces map[int][]int

func newPointFaces(faces [][]int) pointFaces {
	adj := make(pointFaces)
	for f, face := range faces {
		for _, p := range face {
			list := adj[p]
			// A face listing the same point twice was appended on its first
			// occurrence, and faces are visited in order.
			if len(list) > 0 && list[len(list)-1] == f {
				continue
			}
			adj[p] = append(list, f)
		}
	}
	return adj
}
