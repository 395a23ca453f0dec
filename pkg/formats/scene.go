package formats

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshprep/pkg/math"
	"github.com/Faultbox/meshprep/pkg/mesh"
)

// SceneNode is the YAML form of a mesh node.
//
//	name: hull
//	points: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
//	faces: [[0, 1, 2]]
//	translation: [0, 0, 5]
//	rotation: {axis: [0, 0, 1], angle: 90}
//	materials: [0, 0.5]
//	material_index: [1]
//	children: [...]
//
// Repeated material tables or subtrees can be written once with YAML anchors
// and aliases; each alias becomes its own copy.
type SceneNode struct {
	Name          string       `yaml:"name"`
	Points        [][3]float32 `yaml:"points"`
	Faces         [][]int      `yaml:"faces"`
	NormalIndex   [][]int      `yaml:"normal_index,omitempty"`
	FaceNormals   [][3]float32 `yaml:"face_normals,omitempty"`
	VertexNormals [][3]float32 `yaml:"vertex_normals,omitempty"`

	Translation *[3]float32    `yaml:"translation,omitempty"`
	Rotation    *SceneRotation `yaml:"rotation,omitempty"`
	Scale       *[3]float32    `yaml:"scale,omitempty"`

	// Materials lists the transparency of each material, 0 opaque to 1
	// invisible.
	Materials     []float32 `yaml:"materials,omitempty"`
	MaterialIndex []int     `yaml:"material_index,omitempty"`

	Children []*SceneNode `yaml:"children,omitempty"`
}

// SceneRotation is an axis and an angle in degrees.
type SceneRotation struct {
	Axis  [3]float32 `yaml:"axis"`
	Angle float32    `yaml:"angle"`
}

// LoadScene reads a YAML scene file.
func LoadScene(path string) (*mesh.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	root, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", filepath.Base(path), err)
	}
	if root.Name == "" {
		root.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return root, nil
}

// ParseScene builds a node tree from a YAML scene and validates it.
func ParseScene(data []byte) (*mesh.Node, error) {
	var doc SceneNode
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}

	return finish(doc.build())
}

func (s *SceneNode) build() *mesh.Node {
	n := mesh.NewNode(s.Name)

	n.Points = vecs(s.Points)
	n.CoordIndex = s.Faces
	n.NormalIndex = s.NormalIndex
	n.ModelFaceNormals = vecs(s.FaceNormals)
	n.ModelVertexNormals = vecs(s.VertexNormals)

	if s.Translation != nil {
		n.Transform.Translation = vec(*s.Translation)
	}
	if s.Rotation != nil {
		n.Transform.RotationAxis = vec(s.Rotation.Axis)
		n.Transform.RotationAngle = s.Rotation.Angle
	}
	if s.Scale != nil {
		n.Transform.Scale = vec(*s.Scale)
	}

	if len(s.Materials) > 0 {
		n.Materials = mesh.Transparencies(s.Materials)
	}
	n.MaterialIndex = s.MaterialIndex

	for _, c := range s.Children {
		if c == nil {
			n.Children = append(n.Children, nil)
			continue
		}
		n.AddChild(c.build())
	}
	return n
}

func vec(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func vecs(in [][3]float32) []math.Vec3 {
	if len(in) == 0 {
		return nil
	}
	out := make([]math.Vec3, len(in))
	for i, v := range in {
		out[i] = vec(v)
	}
	return out
}
