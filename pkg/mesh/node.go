// Package mesh prepares polygonal model data for rendering. A Node owns its
// geometry, a local transform and its children; face normals, smoothed
// per-vertex normals and bounding boxes are derived lazily and cached per node.
package mesh

import (
	"fmt"

	"github.com/Faultbox/meshprep/pkg/math"
)

// Transform is a node's placement relative to its parent, applied as
// translate * rotate * scale.
type Transform struct {
	Translation math.Vec3
	// RotationAxis does not need to be normalized.
	RotationAxis math.Vec3
	// RotationAngle is in degrees. 0 means no rotation.
	RotationAngle float32
	// Scale is per axis. The zero vector is treated as (1, 1, 1) so the
	// zero Transform is the identity.
	Scale math.Vec3
}

// IdentityTransform returns a transform with unit scale and no rotation.
func IdentityTransform() Transform {
	return Transform{Scale: math.Vec3{X: 1, Y: 1, Z: 1}}
}

// Matrix returns the local-to-parent matrix.
func (t Transform) Matrix() math.Mat4 {
	m := math.Translate(t.Translation)
	if t.RotationAngle != 0 {
		m = m.Mul(math.RotateAxis(t.RotationAxis, t.RotationAngle))
	}
	s := t.Scale
	if s.IsZero() {
		s = math.Vec3{X: 1, Y: 1, Z: 1}
	}
	return m.Mul(math.Scale(s))
}

// Node is one element of a model hierarchy.
//
// Geometry fields are filled by a loader before the first query and must not
// change afterwards without calling Invalidate. A node is not safe for
// concurrent use: serialize queries per tree, or finish building all caches
// before sharing it.
type Node struct {
	Name string

	// Points are the vertex positions shared by all faces.
	Points []math.Vec3
	// CoordIndex lists the faces as rings of indices into Points.
	CoordIndex [][]int
	// NormalIndex optionally mirrors CoordIndex with indices into
	// ModelVertexNormals.
	NormalIndex [][]int
	// ModelFaceNormals are per-face normals supplied by the model file.
	ModelFaceNormals []math.Vec3
	// ModelVertexNormals are per-vertex normals supplied by the model file.
	ModelVertexNormals []math.Vec3

	Transform Transform

	// Materials may be shared between nodes. MaterialIndex assigns a material
	// per face; when empty, material 0 applies to the whole node.
	Materials     MaterialTable
	MaterialIndex []int

	Children []*Node

	cache cacheRecord

	normalizedPoints  []math.Vec3
	faceNormals       []math.Vec3
	rawNormalXArea    []math.Vec3
	faceVertexNormals [][]math.Vec3
	degenerateFaces   int

	// Model vertex normals after the exporter workaround, and after repair
	// once RepairedModelNormals is ready.
	vertexNormals []math.Vec3
	normalIndex   [][]int

	ownBounds  math.AABB
	fullBounds math.AABB
}

// NewNode returns an empty node with the identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:      name,
		Transform: IdentityTransform(),
	}
}

// AddChild appends child and returns it.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// State returns the cache state of artifact a.
func (n *Node) State(a Artifact) CacheState {
	return n.cache.state(a)
}

// Invalidate drops every derived artifact of n and its descendants.
func (n *Node) Invalidate() {
	n.Walk(func(node *Node, _ int) bool {
		node.cache.reset()
		node.normalizedPoints = nil
		node.faceNormals = nil
		node.rawNormalXArea = nil
		node.faceVertexNormals = nil
		node.degenerateFaces = 0
		node.vertexNormals = nil
		node.normalIndex = nil
		node.ownBounds = math.EmptyAABB()
		node.fullBounds = math.EmptyAABB()
		return true
	})
}

// Walk calls fn for n and every descendant in depth-first pre-order.
// Returning false from fn skips that node's children. Each node is visited
// at most once even if the hierarchy contains a cycle.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	visited := make(map[*Node]bool)
	var visit func(node *Node, depth int)
	visit = func(node *Node, depth int) {
		if node == nil || visited[node] {
			return
		}
		visited[node] = true
		if !fn(node, depth) {
			return
		}
		for _, c := range node.Children {
			visit(c, depth+1)
		}
	}
	visit(n, 0)
}

// Validate checks the structural invariants of n and its descendants and
// returns the first violation found.
func (n *Node) Validate() error {
	return n.validate(make(map[*Node]bool))
}

func (n *Node) validate(onPath map[*Node]bool) error {
	if onPath[n] {
		return fmt.Errorf("node %q: %w", n.Name, ErrCycle)
	}
	onPath[n] = true
	defer delete(onPath, n)

	for i, face := range n.CoordIndex {
		if len(face) < 3 {
			return fmt.Errorf("node %q face %d: %w", n.Name, i, ErrFaceTooSmall)
		}
		for _, p := range face {
			if p < 0 || p >= len(n.Points) {
				return fmt.Errorf("node %q face %d index %d: %w", n.Name, i, p, ErrIndexOutOfRange)
			}
		}
	}

	if len(n.NormalIndex) > 0 {
		if len(n.NormalIndex) != len(n.CoordIndex) {
			return fmt.Errorf("node %q: %d normal rings for %d faces: %w",
				n.Name, len(n.NormalIndex), len(n.CoordIndex), ErrNormalIndexShape)
		}
		for i, ring := range n.NormalIndex {
			if len(ring) != len(n.CoordIndex[i]) {
				return fmt.Errorf("node %q face %d: %w", n.Name, i, ErrNormalIndexShape)
			}
			for _, k := range ring {
				if k < 0 || k >= len(n.ModelVertexNormals) {
					return fmt.Errorf("node %q face %d normal %d: %w", n.Name, i, k, ErrNormalOutOfRange)
				}
			}
		}
	}

	if len(n.MaterialIndex) > len(n.CoordIndex) {
		return fmt.Errorf("node %q: %d material indices for %d faces: %w",
			n.Name, len(n.MaterialIndex), len(n.CoordIndex), ErrMaterialIndexShape)
	}

	for i, c := range n.Children {
		if c == nil {
			return fmt.Errorf("node %q child %d: %w", n.Name, i, ErrNilChild)
		}
		if err := c.validate(onPath); err != nil {
			return err
		}
	}
	return nil
}

// NormalizedPoints returns the points scaled into [-1, 1], or nil before
// NormalizePoints has run.
func (n *Node) NormalizedPoints() []math.Vec3 {
	return n.normalizedPoints
}

// FaceNormals returns one unit normal per face, or nil before
// ComputeFaceNormals has run.
func (n *Node) FaceNormals() []math.Vec3 {
	return n.faceNormals
}

// AreaWeightedNormals returns the raw Newell normal of each face scaled by its
// squared length, or nil before ComputeFaceNormals has run.
func (n *Node) AreaWeightedNormals() []math.Vec3 {
	return n.rawNormalXArea
}

// VertexNormals returns the smoothed normals, one slice per face with one
// entry per corner, or nil before ComputeVertexNormals has run.
func (n *Node) VertexNormals() [][]math.Vec3 {
	return n.faceVertexNormals
}

// ModelNormals returns the model-supplied per-vertex normals in use after
// the exporter workaround and repair, with the index rings that address them.
func (n *Node) ModelNormals() ([]math.Vec3, [][]int) {
	return n.vertexNormals, n.normalIndex
}

// DegenerateFaceCount returns how many faces needed a fallback normal.
func (n *Node) DegenerateFaceCount() int {
	return n.degenerateFaces
}

// point returns Points[i] and whether i is in range.
func (n *Node) point(i int) (math.Vec3, bool) {
	if i < 0 || i >= len(n.Points) {
		return math.Vec3{}, false
	}
	return n.Points[i], true
}
