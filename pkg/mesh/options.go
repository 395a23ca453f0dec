package mesh

import (
	"runtime"

	"go.uber.org/zap"
)

// SmoothingThreshold is the minimum dot product between two face normals for
// the faces to be blended at a shared vertex.
const SmoothingThreshold float32 = 0.05

// Options carries the render configuration into every computation. Derived
// caches are built with the options of the first call; call Invalidate after
// changing them.
type Options struct {
	// UseMaterialTransparency enables material lookups. When false every
	// face is treated as opaque.
	UseMaterialTransparency bool
	// PreferModelNormals uses normals supplied by the model file instead of
	// recomputing them.
	PreferModelNormals bool
	// SmoothShading emits one normal per face corner instead of one per face.
	SmoothShading bool
	// Workers bounds the goroutines used for vertex smoothing.
	// 0 uses GOMAXPROCS, 1 runs sequentially.
	Workers int
	// LegacyBoundsTransform maps only the min and max corners of a node's box
	// into parent space instead of all eight corners.
	LegacyBoundsTransform bool
	// Logger receives diagnostics about degenerate or malformed data.
	// nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the options used by the viewer out of the box.
func DefaultOptions() Options {
	return Options{
		UseMaterialTransparency: true,
		SmoothShading:           true,
	}
}

func (o Options) log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Workers
}
