// Package formats loads model files into mesh node trees. Scenes can be
// described in YAML or come from glTF 2.0 files (.gltf and .glb).
package formats

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshprep/pkg/mesh"
)

// Loader errors.
var (
	ErrNoGeometry        = errors.New("model has no faces")
	ErrUnsupportedFormat = errors.New("unsupported model format")
)

// Load reads the model at path, choosing the loader by file extension.
func Load(path string) (*mesh.Node, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return LoadScene(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// finish checks a freshly built tree before it is handed out.
func finish(root *mesh.Node) (*mesh.Node, error) {
	if err := root.Validate(); err != nil {
		return nil, err
	}

	faces := 0
	root.Walk(func(n *mesh.Node, _ int) bool {
		faces += len(n.CoordIndex)
		return true
	})
	if faces == 0 {
		return nil, ErrNoGeometry
	}
	return root, nil
}
