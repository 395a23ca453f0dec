package mesh

import (
	"go.uber.org/zap"

	"github.com/Faultbox/meshprep/pkg/math"
)

// NormalizePoints scales every point by the reciprocal of the largest absolute
// coordinate so the model fits in [-1, 1]. Normal estimation runs on these
// points to keep its intermediate products in a well conditioned range.
// A model whose points are all at the origin keeps a scale of 1.
func (n *Node) NormalizePoints() {
	if !n.cache.begin(NormalizedPoints) {
		return
	}
	defer n.cache.finish(NormalizedPoints)

	var largest float32
	for _, p := range n.Points {
		largest = max(largest, p.MaxAbs())
	}

	scale := float32(1)
	if largest > math.Epsilon {
		scale = 1 / largest
	}

	n.normalizedPoints = make([]math.Vec3, len(n.Points))
	for i, p := range n.Points {
		n.normalizedPoints[i] = p.Scale(scale)
	}
}

// ComputeFaceNormals computes one unit normal per face with Newell's method
// along with the area-weighted raw normal used for smoothing.
//
// With PreferModelNormals set, normals supplied by the model are used instead:
// per-face normals verbatim, or else the normalized sum of the face's supplied
// per-vertex normals.
func (n *Node) ComputeFaceNormals(opts Options) {
	if !n.cache.begin(FaceNormals) {
		return
	}
	defer n.cache.finish(FaceNormals)

	n.NormalizePoints()
	log := opts.log()
	faces := len(n.CoordIndex)

	suppliedFace := opts.PreferModelNormals && len(n.ModelFaceNormals) > 0
	if opts.PreferModelNormals {
		n.vertexNormals = n.ModelVertexNormals
		n.normalIndex = n.NormalIndex
	}

	// Some exporters write per-vertex normals where per-face normals belong.
	// A per-face list sized like the point list but not like the face list is
	// taken as per-vertex data addressed by the face rings.
	if suppliedFace && len(n.ModelFaceNormals) == len(n.Points) && len(n.ModelFaceNormals) != faces {
		log.Info("face normals sized per vertex, reading them as vertex normals",
			zap.String("node", n.Name),
			zap.Int("normals", len(n.ModelFaceNormals)),
			zap.Int("faces", faces))
		n.vertexNormals = n.ModelFaceNormals
		n.normalIndex = n.CoordIndex
		suppliedFace = false
	}

	n.faceNormals = make([]math.Vec3, faces)
	n.rawNormalXArea = make([]math.Vec3, faces)
	n.degenerateFaces = 0
	if suppliedFace {
		copy(n.faceNormals, n.ModelFaceNormals)
	}
	fromVertexNormals := opts.PreferModelNormals && len(n.vertexNormals) > 0

	for i, face := range n.CoordIndex {
		raw, edges := n.newellNormal(face)
		n.rawNormalXArea[i] = raw.Scale(raw.LengthSquared())

		if suppliedFace && i < len(n.ModelFaceNormals) {
			continue
		}

		// A face is degenerate when its area vanishes relative to its own
		// edges, whatever its size relative to the model.
		dir, floor := raw, math.Epsilon*edges
		if fromVertexNormals {
			if sum, ok := n.suppliedNormalSum(i); ok {
				dir, floor = sum, 0
			} else {
				log.Debug("normal index does not match face, using geometry",
					zap.String("node", n.Name), zap.Int("face", i))
			}
		}

		normal, ok := dir.Direction()
		if !ok || dir.Length() <= floor {
			normal = fallbackNormal(dir)
			n.degenerateFaces++
			log.Debug("degenerate face normal, using fallback axis",
				zap.String("node", n.Name), zap.Int("face", i),
				zap.Int("vertices", len(face)), zap.Any("fallback", normal))
		}
		n.faceNormals[i] = normal
	}
}

// newellNormal returns the unnormalized Newell normal of a face ring over the
// normalized points, whose length is twice the polygon's area, together with
// the sum of the squared edge lengths. Edges touching an out-of-range index
// are skipped.
func (n *Node) newellNormal(face []int) (math.Vec3, float32) {
	var sum math.Vec3
	var edges float32
	for i, a := range face {
		b := face[(i+1)%len(face)]
		if a < 0 || a >= len(n.normalizedPoints) || b < 0 || b >= len(n.normalizedPoints) {
			continue
		}
		u, v := n.normalizedPoints[a], n.normalizedPoints[b]
		sum.X += (u.Y - v.Y) * (u.Z + v.Z)
		sum.Y += (u.Z - v.Z) * (u.X + v.X)
		sum.Z += (u.X - v.X) * (u.Y + v.Y)
		edges += u.Sub(v).LengthSquared()
	}
	return sum, edges
}

// suppliedNormalSum adds up the model vertex normals addressed by face i.
func (n *Node) suppliedNormalSum(i int) (math.Vec3, bool) {
	if i >= len(n.normalIndex) || len(n.normalIndex[i]) != len(n.CoordIndex[i]) {
		return math.Vec3{}, false
	}
	var sum math.Vec3
	for _, k := range n.normalIndex[i] {
		if k < 0 || k >= len(n.vertexNormals) {
			return math.Vec3{}, false
		}
		sum = sum.Add(n.vertexNormals[k])
	}
	return sum, true
}

// fallbackNormal picks a deterministic unit axis for a degenerate face:
// +Z when Z strictly dominates, +Y otherwise.
func fallbackNormal(v math.Vec3) math.Vec3 {
	x, y, z := abs32(v.X), abs32(v.Y), abs32(v.Z)
	if z > x && z > y {
		return math.Vec3{Z: 1}
	}
	return math.Vec3{Y: 1}
}

// ComputeVertexNormals blends, at every face corner, the area-weighted normals
// of all faces sharing that corner's point whose facet normal is within the
// SmoothingThreshold of the corner's own face. Each contribution is weighted
// by the dot product of the two facet normals.
//
// The per-face work is independent and runs on Options.Workers goroutines.
func (n *Node) ComputeVertexNormals(opts Options) {
	if !n.cache.begin(VertexNormals) {
		return
	}
	defer n.cache.finish(VertexNormals)

	n.ComputeFaceNormals(opts)

	faces := n.CoordIndex
	out := make([][]math.Vec3, len(faces))
	for i, face := range faces {
		out[i] = make([]math.Vec3, len(face))
		for j := range face {
			out[i][j] = n.rawNormalXArea[i]
		}
	}

	adj := newPointFaces(faces)
	workers := opts.workers()

	parallelFor(len(faces), workers, func(lo, hi int) {
		for a := lo; a < hi; a++ {
			n.smoothFace(a, adj, out[a])
		}
	})

	// The weights shrink with the cube of the face size, so a fine mesh sums
	// to vectors far below Epsilon that still carry a direction. A sum with
	// no direction at all takes the face's own normal.
	parallelFor(len(faces), workers, func(lo, hi int) {
		for a := lo; a < hi; a++ {
			for j, v := range out[a] {
				u, ok := v.Direction()
				if !ok {
					u = n.faceNormals[a]
				}
				out[a][j] = u
			}
		}
	})

	n.faceVertexNormals = out
}

// smoothFace accumulates the neighbors of face a into corners, which holds
// one seeded sum per corner of a.
func (n *Node) smoothFace(a int, adj pointFaces, corners []math.Vec3) {
	na := n.faceNormals[a]
	for j, p := range n.CoordIndex[a] {
		for _, b := range adj[p] {
			if b == a {
				continue
			}
			d := na.Dot(n.faceNormals[b])
			if d > SmoothingThreshold {
				corners[j] = corners[j].Add(n.rawNormalXArea[b].Scale(d))
			}
		}
	}
}

// VerifyAndRepairVertexNormals sanitizes the model-supplied per-vertex
// normals before they are rendered. A component of exactly 1 alongside other
// nonzero components wins and the others are zeroed; otherwise components
// smaller than Epsilon are zeroed. The result is renormalized when possible.
func (n *Node) VerifyAndRepairVertexNormals(opts Options) {
	if !n.cache.begin(RepairedModelNormals) {
		return
	}
	defer n.cache.finish(RepairedModelNormals)

	n.ComputeFaceNormals(opts)

	repaired := make([]math.Vec3, len(n.vertexNormals))
	for i, v := range n.vertexNormals {
		r, ok := repairNormal(v)
		if !ok {
			opts.log().Debug("cannot normalize model normal",
				zap.String("node", n.Name), zap.Int("index", i), zap.Any("normal", v))
		}
		repaired[i] = r
	}
	n.vertexNormals = repaired
}

func repairNormal(v math.Vec3) (math.Vec3, bool) {
	switch {
	case v.X == 1 && (v.Y != 0 || v.Z != 0):
		v.Y, v.Z = 0, 0
	case v.Y == 1 && (v.X != 0 || v.Z != 0):
		v.X, v.Z = 0, 0
	case v.Z == 1 && (v.X != 0 || v.Y != 0):
		v.X, v.Y = 0, 0
	default:
		if abs32(v.X) < math.Epsilon {
			v.X = 0
		}
		if abs32(v.Y) < math.Epsilon {
			v.Y = 0
		}
		if abs32(v.Z) < math.Epsilon {
			v.Z = 0
		}
	}
	return v.Normalize()
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
