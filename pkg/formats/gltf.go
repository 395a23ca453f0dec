package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshprep/pkg/math"
	"github.com/Faultbox/meshprep/pkg/mesh"
)

// LoadGLTF reads a .gltf or .glb file. External buffers are resolved relative
// to the file.
func LoadGLTF(path string) (*mesh.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	root, err := FromGLTF(doc, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("gltf %s: %w", filepath.Base(path), err)
	}
	return root, nil
}

// FromGLTF converts the default scene of doc, or every root node when the
// document names no scene, into a node tree under a root called name.
//
// Each glTF node becomes one mesh node. Triangle primitives of its mesh are
// appended into the node's point and face lists; NORMAL attributes become
// model vertex normals addressed by the face rings. All nodes share one
// material table where a material's transparency is 1 - base color alpha for
// blended and masked materials and 0 for opaque ones. Primitives without a
// material use an extra opaque entry at the end of the table.
func FromGLTF(doc *gltf.Document, name string) (*mesh.Node, error) {
	c := gltfConverter{
		doc:       doc,
		materials: gltfMaterials(doc),
		built:     make(map[int]*mesh.Node),
		onPath:    make(map[int]bool),
	}

	root := mesh.NewNode(name)
	for _, idx := range sceneRoots(doc) {
		child, err := c.node(idx)
		if err != nil {
			return nil, err
		}
		root.AddChild(child)
	}
	return finish(root)
}

type gltfConverter struct {
	doc       *gltf.Document
	materials mesh.Transparencies
	built     map[int]*mesh.Node
	onPath    map[int]bool
}

// sceneRoots returns the node indices to convert.
func sceneRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func gltfMaterials(doc *gltf.Document) mesh.Transparencies {
	table := make(mesh.Transparencies, len(doc.Materials)+1)
	for i, m := range doc.Materials {
		if m == nil || m.AlphaMode == gltf.AlphaOpaque {
			continue
		}
		alpha := float32(1)
		if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorFactor != nil {
			alpha = float32(pbr.BaseColorFactor[3])
		}
		table[i] = 1 - alpha
	}
	return table
}

func (c *gltfConverter) node(idx int) (*mesh.Node, error) {
	if idx < 0 || idx >= len(c.doc.Nodes) {
		return nil, fmt.Errorf("node %d: %w", idx, mesh.ErrIndexOutOfRange)
	}
	if c.onPath[idx] {
		return nil, fmt.Errorf("node %d: %w", idx, mesh.ErrCycle)
	}
	// glTF forbids sharing a node between parents, but a node reached twice
	// is still drawn from one set of caches.
	if n, ok := c.built[idx]; ok {
		return n, nil
	}
	c.onPath[idx] = true
	defer delete(c.onPath, idx)

	src := c.doc.Nodes[idx]
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("node%d", idx)
	}

	n := mesh.NewNode(name)
	n.Transform = nodeTransform(src)
	c.built[idx] = n

	if src.Mesh != nil {
		if err := c.appendMesh(n, *src.Mesh); err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
	}

	for _, ci := range src.Children {
		child, err := c.node(ci)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

// nodeTransform converts a glTF node's placement. A matrix, when present, is
// decomposed into translation, rotation and scale.
func nodeTransform(src *gltf.Node) mesh.Transform {
	if m := src.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return decompose(m)
	}

	t := src.TranslationOrDefault()
	r := src.RotationOrDefault()
	s := src.ScaleOrDefault()

	q := math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
	axis, angle := q.AxisAngle()
	return mesh.Transform{
		Translation:   math.V3(float32(t[0]), float32(t[1]), float32(t[2])),
		RotationAxis:  axis,
		RotationAngle: angle,
		Scale:         math.V3(float32(s[0]), float32(s[1]), float32(s[2])),
	}
}

func decompose(m [16]float64) mesh.Transform {
	var mat math.Mat4
	for i, v := range m {
		mat[i] = float32(v)
	}

	col := func(i int) math.Vec3 { return math.V3(mat[i], mat[i+1], mat[i+2]) }
	scale := math.V3(col(0).Length(), col(4).Length(), col(8).Length())

	rot := math.Identity()
	for i, s := range []float32{scale.X, scale.Y, scale.Z} {
		if s > math.Epsilon {
			rot[i*4], rot[i*4+1], rot[i*4+2] = mat[i*4]/s, mat[i*4+1]/s, mat[i*4+2]/s
		}
	}

	axis, angle := math.QuatFromMat4(rot).AxisAngle()
	return mesh.Transform{
		Translation:   math.V3(mat[12], mat[13], mat[14]),
		RotationAxis:  axis,
		RotationAngle: angle,
		Scale:         scale,
	}
}

// appendMesh adds the triangle primitives of mesh mi to n.
func (c *gltfConverter) appendMesh(n *mesh.Node, mi int) error {
	if mi < 0 || mi >= len(c.doc.Meshes) {
		return fmt.Errorf("mesh %d: %w", mi, mesh.ErrIndexOutOfRange)
	}
	m := c.doc.Meshes[mi]

	var normals []math.Vec3
	allNormals := true
	var materialIndex []int
	defaultMaterial := len(c.materials) - 1

	for pi, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		acr, err := c.accessor(posIdx)
		if err != nil {
			return fmt.Errorf("primitive %d positions: %w", pi, err)
		}
		positions, err := modeler.ReadPosition(c.doc, acr, nil)
		if err != nil {
			return fmt.Errorf("primitive %d positions: %w", pi, err)
		}
		base := len(n.Points)
		for _, p := range positions {
			n.Points = append(n.Points, math.V3(p[0], p[1], p[2]))
		}

		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok && allNormals {
			acr, err := c.accessor(normIdx)
			if err != nil {
				return fmt.Errorf("primitive %d normals: %w", pi, err)
			}
			vn, err := modeler.ReadNormal(c.doc, acr, nil)
			if err != nil {
				return fmt.Errorf("primitive %d normals: %w", pi, err)
			}
			if len(vn) != len(positions) {
				allNormals = false
			}
			for _, v := range vn {
				normals = append(normals, math.V3(v[0], v[1], v[2]))
			}
		} else {
			allNormals = false
		}

		var indices []int
		if prim.Indices != nil {
			acr, err := c.accessor(*prim.Indices)
			if err != nil {
				return fmt.Errorf("primitive %d indices: %w", pi, err)
			}
			raw, err := modeler.ReadIndices(c.doc, acr, nil)
			if err != nil {
				return fmt.Errorf("primitive %d indices: %w", pi, err)
			}
			indices = make([]int, len(raw))
			for i, v := range raw {
				indices[i] = int(v)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		material := defaultMaterial
		if prim.Material != nil && *prim.Material < defaultMaterial {
			material = *prim.Material
		}

		for i := 0; i+2 < len(indices); i += 3 {
			n.CoordIndex = append(n.CoordIndex, []int{
				base + indices[i],
				base + indices[i+1],
				base + indices[i+2],
			})
			materialIndex = append(materialIndex, material)
		}
	}

	if allNormals && len(normals) == len(n.Points) {
		n.ModelVertexNormals = normals
		n.NormalIndex = n.CoordIndex
	}
	if len(n.CoordIndex) > 0 {
		n.Materials = c.materials
		n.MaterialIndex = materialIndex
	}
	return nil
}

func (c *gltfConverter) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(c.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", i, mesh.ErrIndexOutOfRange)
	}
	return c.doc.Accessors[i], nil
}
