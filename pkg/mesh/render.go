package mesh

import (
	"go.uber.org/zap"

	"github.com/Faultbox/meshprep/pkg/math"
)

// Primitive is the draw mode for a face, chosen by its vertex count.
type Primitive uint8

const (
	Triangles Primitive = iota
	Quads
	Polygon
)

func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case Quads:
		return "quads"
	}
	return "polygon"
}

// PrimitiveFor returns the primitive for a face with arity vertices.
func PrimitiveFor(arity int) Primitive {
	switch arity {
	case 3:
		return Triangles
	case 4:
		return Quads
	}
	return Polygon
}

// Face is the data handed to a Rasterizer for one polygon, in the local space
// of the innermost pushed transform.
type Face struct {
	Index     int
	Primitive Primitive
	Positions []math.Vec3
	// Normals holds one entry for flat shading or one per position for
	// smooth shading.
	Normals      []math.Vec3
	Transparency float32
}

// Smooth reports whether the face carries one normal per corner.
func (f Face) Smooth() bool {
	return len(f.Normals) == len(f.Positions) && len(f.Normals) > 1
}

// Rasterizer consumes the faces emitted by a render traversal.
type Rasterizer interface {
	PushTransform(t Transform)
	PopTransform()
	DrawFace(node *Node, f Face)
}

// Pass selects which faces a traversal emits.
type Pass uint8

const (
	PassAll Pass = iota
	PassOpaque
	PassTransparent
	PassNone
)

// PassFor maps the two "only" selectors to a pass. Setting both selects
// nothing.
func PassFor(opaqueOnly, transparentOnly bool) Pass {
	switch {
	case opaqueOnly && transparentOnly:
		return PassNone
	case opaqueOnly:
		return PassOpaque
	case transparentOnly:
		return PassTransparent
	}
	return PassAll
}

func (p Pass) String() string {
	switch p {
	case PassAll:
		return "all"
	case PassOpaque:
		return "opaque"
	case PassTransparent:
		return "transparent"
	}
	return "none"
}

func (p Pass) accepts(transparent bool) bool {
	switch p {
	case PassAll:
		return true
	case PassOpaque:
		return !transparent
	case PassTransparent:
		return transparent
	}
	return false
}

// Render walks n and its descendants, pushing each node's transform around
// its own faces and its children. Normals are computed on first use.
func (n *Node) Render(r Rasterizer, pass Pass, opts Options) {
	if pass == PassNone {
		return
	}
	n.render(r, pass, opts, make(map[*Node]bool))
}

func (n *Node) render(r Rasterizer, pass Pass, opts Options, onPath map[*Node]bool) {
	if onPath[n] {
		opts.log().Warn("node reached through itself, ignoring cycle",
			zap.String("node", n.Name))
		return
	}
	onPath[n] = true
	defer delete(onPath, n)

	r.PushTransform(n.Transform)
	n.renderFaces(r, pass, opts)
	for _, c := range n.Children {
		if c != nil {
			c.render(r, pass, opts, onPath)
		}
	}
	r.PopTransform()
}

func (n *Node) renderFaces(r Rasterizer, pass Pass, opts Options) {
	if len(n.CoordIndex) == 0 {
		return
	}

	n.ComputeFaceNormals(opts)

	modelNormals := false
	if opts.SmoothShading {
		if opts.PreferModelNormals && len(n.vertexNormals) > 0 {
			n.VerifyAndRepairVertexNormals(opts)
			modelNormals = true
		} else {
			n.ComputeVertexNormals(opts)
		}
	}

	log := opts.log()
	for i, face := range n.CoordIndex {
		t := n.faceTransparency(i, opts)
		if t >= 1 || !pass.accepts(t > 0) {
			continue
		}

		positions, ok := n.facePositions(face)
		if !ok {
			log.Debug("face references a missing point, skipped",
				zap.String("node", n.Name), zap.Int("face", i))
			continue
		}

		f := Face{
			Index:        i,
			Primitive:    PrimitiveFor(len(face)),
			Positions:    positions,
			Transparency: t,
		}
		switch {
		case modelNormals:
			f.Normals = n.modelCornerNormals(i, log)
		case opts.SmoothShading:
			f.Normals = append([]math.Vec3(nil), n.faceVertexNormals[i]...)
		default:
			f.Normals = []math.Vec3{n.faceNormals[i]}
		}
		r.DrawFace(n, f)
	}
}

func (n *Node) facePositions(face []int) ([]math.Vec3, bool) {
	out := make([]math.Vec3, len(face))
	for j, idx := range face {
		p, ok := n.point(idx)
		if !ok {
			return nil, false
		}
		out[j] = p
	}
	return out, true
}

// modelCornerNormals looks up the repaired model normal of every corner of
// face i. Corners whose normal index is missing use the face normal.
func (n *Node) modelCornerNormals(i int, log *zap.Logger) []math.Vec3 {
	face := n.CoordIndex[i]
	out := make([]math.Vec3, len(face))
	var ring []int
	if i < len(n.normalIndex) && len(n.normalIndex[i]) == len(face) {
		ring = n.normalIndex[i]
	} else {
		log.Debug("normal index does not match face arity",
			zap.String("node", n.Name), zap.Int("face", i))
	}
	for j := range face {
		if ring != nil && ring[j] >= 0 && ring[j] < len(n.vertexNormals) {
			out[j] = n.vertexNormals[ring[j]]
		} else {
			out[j] = n.faceNormals[i]
		}
	}
	return out
}
