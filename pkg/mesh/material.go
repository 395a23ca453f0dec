package mesh

import "go.uber.org/zap"

// MaterialTable resolves a material index to its transparency.
type MaterialTable interface {
	// Transparency returns the transparency of material index in [0, 1],
	// or false when the index is not in the table.
	Transparency(index int) (float32, bool)
}

// Transparencies is a MaterialTable backed by a slice indexed by material.
type Transparencies []float32

// Transparency implements MaterialTable.
func (t Transparencies) Transparency(index int) (float32, bool) {
	if index < 0 || index >= len(t) {
		return 0, false
	}
	return clamp01(t[index]), true
}

// faceTransparency returns the transparency that applies to face i. Missing
// tables, missing indices and out-of-range indices all resolve to opaque.
func (n *Node) faceTransparency(i int, opts Options) float32 {
	if !opts.UseMaterialTransparency || n.Materials == nil {
		return 0
	}

	index := 0
	if len(n.MaterialIndex) > 0 {
		if i >= len(n.MaterialIndex) {
			opts.log().Debug("face has no material index, using default",
				zap.String("node", n.Name), zap.Int("face", i))
			return 0
		}
		index = n.MaterialIndex[i]
	}

	t, ok := n.Materials.Transparency(index)
	if !ok {
		opts.log().Debug("material index out of range, using default",
			zap.String("node", n.Name), zap.Int("face", i), zap.Int("material", index))
		return 0
	}
	return t
}

// faceHidden reports whether face i is fully transparent.
func (n *Node) faceHidden(i int, opts Options) bool {
	return n.faceTransparency(i, opts) >= 1
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
