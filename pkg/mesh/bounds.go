package mesh

import (
	"go.uber.org/zap"

	"github.com/Faultbox/meshprep/pkg/math"
)

// OwnBounds returns the box around this node's own visible faces in local
// space, ignoring children. Faces whose material is fully transparent do not
// count. The box is empty when no face contributes a point.
func (n *Node) OwnBounds(opts Options) math.AABB {
	if n.cache.begin(OwnBounds) {
		n.ownBounds = n.computeOwnBounds(opts)
		n.cache.finish(OwnBounds)
	}
	return n.ownBounds
}

func (n *Node) computeOwnBounds(opts Options) math.AABB {
	box := math.EmptyAABB()
	for i, face := range n.CoordIndex {
		if n.faceHidden(i, opts) {
			continue
		}
		for _, idx := range face {
			p, ok := n.point(idx)
			if !ok {
				opts.log().Debug("point index out of range, skipped in bounds",
					zap.String("node", n.Name), zap.Int("face", i), zap.Int("index", idx))
				continue
			}
			box = box.Extend(p)
		}
	}
	return box
}

// BoundingBox returns the box around this node and all of its descendants,
// expressed in the parent's space. Children are computed first, their boxes
// merged with the node's own box, and the result is mapped through the local
// transform. The result is cached until Invalidate.
func (n *Node) BoundingBox(opts Options) math.AABB {
	switch n.cache.state(FullBounds) {
	case Ready:
		return n.fullBounds
	case Computing:
		opts.log().Warn("node reached through itself, ignoring cycle",
			zap.String("node", n.Name))
		return math.EmptyAABB()
	}

	n.cache.begin(FullBounds)
	defer n.cache.finish(FullBounds)

	box := n.OwnBounds(opts)
	for _, c := range n.Children {
		if c != nil {
			box = box.Union(c.BoundingBox(opts))
		}
	}

	m := n.Transform.Matrix()
	if opts.LegacyBoundsTransform {
		n.fullBounds = box.TransformExtremes(m)
	} else {
		n.fullBounds = box.Transform(m)
	}
	return n.fullBounds
}
