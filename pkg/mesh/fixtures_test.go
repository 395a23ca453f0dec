package mesh

import (
	"github.com/Faultbox/meshprep/pkg/math"
)

// unitCube returns a cube of side 1 centered at the origin with outward
// counter-clockwise quads ordered -Z, +Z, -Y, +Y, -X, +X.
func unitCube(name string) *Node {
	n := NewNode(name)
	n.Points = []math.Vec3{
		{X: -0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: -0.5, Z: -0.5},
		{X: 0.5, Y: 0.5, Z: -0.5}, {X: -0.5, Y: 0.5, Z: -0.5},
		{X: -0.5, Y: -0.5, Z: 0.5}, {X: 0.5, Y: -0.5, Z: 0.5},
		{X: 0.5, Y: 0.5, Z: 0.5}, {X: -0.5, Y: 0.5, Z: 0.5},
	}
	n.CoordIndex = [][]int{
		{0, 3, 2, 1},
		{4, 5, 6, 7},
		{0, 1, 5, 4},
		{3, 7, 6, 2},
		{0, 4, 7, 3},
		{1, 2, 6, 5},
	}
	return n
}

var cubeFaceNormals = []math.Vec3{
	{Z: -1}, {Z: 1}, {Y: -1}, {Y: 1}, {X: -1}, {X: 1},
}

// boxNode returns a cube spanning [lo, hi] on every axis.
func boxNode(name string, lo, hi float32) *Node {
	n := unitCube(name)
	for i, p := range n.Points {
		n.Points[i] = math.Vec3{X: pick(p.X, lo, hi), Y: pick(p.Y, lo, hi), Z: pick(p.Z, lo, hi)}
	}
	return n
}

func pick(c, lo, hi float32) float32 {
	if c < 0 {
		return lo
	}
	return hi
}

// grid returns a w x h sheet of quads in the XY plane over an uneven height
// field, so most neighboring faces blend at shared corners.
func grid(name string, w, h int) *Node {
	n := NewNode(name)
	for y := 0; y <= h; y++ {
		for x := 0; x <= w; x++ {
			fx, fy := float32(x), float32(y)
			z := 0.1 * float32((x*x+3*y)%7)
			n.Points = append(n.Points, math.Vec3{X: fx, Y: fy, Z: z})
		}
	}
	stride := w + 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*stride + x
			n.CoordIndex = append(n.CoordIndex, []int{i, i + 1, i + stride + 1, i + stride})
		}
	}
	return n
}

// bruteForceVertexNormals smooths by scanning every face pair, with no
// adjacency index and no parallelism.
func bruteForceVertexNormals(n *Node) [][]math.Vec3 {
	faces := n.CoordIndex
	out := make([][]math.Vec3, len(faces))
	for a, face := range faces {
		out[a] = make([]math.Vec3, len(face))
		for j, p := range face {
			acc := n.rawNormalXArea[a]
			for b := range faces {
				if b == a {
					continue
				}
				for _, q := range faces[b] {
					if q != p {
						continue
					}
					d := n.faceNormals[a].Dot(n.faceNormals[b])
					if d > SmoothingThreshold {
						acc = acc.Add(n.rawNormalXArea[b].Scale(d))
					}
					break
				}
			}
			if u, ok := acc.Direction(); ok {
				out[a][j] = u
			} else {
				out[a][j] = n.faceNormals[a]
			}
		}
	}
	return out
}

type drawnFace struct {
	node string
	face Face
}

// recorder is a Rasterizer that keeps everything it is given.
type recorder struct {
	events     []string
	faces      []drawnFace
	transforms []Transform
	depth      int
	maxDep     int
}

func (r *recorder) PushTransform(t Transform) {
	r.depth++
	r.maxDep = max(r.maxDep, r.depth)
	r.transforms = append(r.transforms, t)
	r.events = append(r.events, "push")
}

func (r *recorder) PopTransform() {
	r.depth--
	r.events = append(r.events, "pop")
}

func (r *recorder) DrawFace(node *Node, f Face) {
	r.events = append(r.events, "face:"+node.Name)
	r.faces = append(r.faces, drawnFace{node: node.Name, face: f})
}

// triangle returns a node with a single counter-clockwise triangle in the
// XY plane.
func triangle(name string) *Node {
	n := NewNode(name)
	n.Points = []math.Vec3{{}, {X: 1}, {Y: 1}}
	n.CoordIndex = [][]int{{0, 1, 2}}
	return n
}

func near(a, b math.Vec3, tol float32) bool {
	return abs32(a.X-b.X) <= tol && abs32(a.Y-b.Y) <= tol && abs32(a.Z-b.Z) <= tol
}

func isUnit(v math.Vec3) bool {
	l := v.Length()
	return l > 0.9999 && l < 1.0001
}
