// meshinfo loads a model and reports what the mesh pipeline derives from it:
// bounding boxes, normal statistics and the faces each render pass would draw.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshprep/internal/config"
	"github.com/Faultbox/meshprep/internal/logger"
	"github.com/Faultbox/meshprep/pkg/formats"
	"github.com/Faultbox/meshprep/pkg/mesh"
)

func main() {
	config.ParseFlags()
	args := config.Args()

	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	command := args[0]
	if command == "help" || command == "-h" || command == "--help" {
		printUsage(os.Stdout)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := cfg.MeshOptions(logger.Named("mesh"))

	var cmd func(io.Writer, *mesh.Node, mesh.Options)
	switch command {
	case "bounds":
		cmd = cmdBounds
	case "normals":
		cmd = cmdNormals
	case "render":
		cmd = cmdRender
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: meshinfo [flags] %s <model>\n", command)
		os.Exit(1)
	}

	start := time.Now()
	root, err := formats.Load(args[1])
	if err != nil {
		logger.Error("failed to load model", zap.String("path", args[1]), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("model loaded",
		zap.String("path", args[1]),
		zap.Duration("elapsed", time.Since(start)))

	cmd(os.Stdout, root, opts)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshinfo - mesh normal and bounding box inspector

Usage:
  meshinfo [flags] <command> <model>

Commands:
  bounds <model>    Print the bounding box of every node
  normals <model>   Print face and vertex normal statistics per node
  render <model>    Count the faces each render pass emits

Models:
  .yaml/.yml scene descriptions, .gltf and .glb files

Flags:
  -config <path>    Config file (default ./meshinfo.yaml or the user config dir)
  -debug            Enable debug logging
  -log-file <path>  Also write logs to a rotating file
  -flat             Flat shading, one normal per face
  -model-normals    Use normals stored in the model
  -no-materials     Treat every face as opaque
  -workers <n>      Goroutines for smoothing (0 = all CPUs, 1 = sequential)
  -legacy-bounds    Transform only the min and max box corners

Examples:
  meshinfo bounds engine.glb
  meshinfo -flat -workers 1 normals bracket.yaml
  meshinfo -no-materials render cockpit.gltf`)
}

// cmdBounds prints the hierarchy with each node's box in its parent's space.
func cmdBounds(w io.Writer, root *mesh.Node, opts mesh.Options) {
	box := root.BoundingBox(opts)

	root.Walk(func(n *mesh.Node, depth int) bool {
		b := n.BoundingBox(opts)
		indent := strings.Repeat("  ", depth)
		if b.IsEmpty() {
			fmt.Fprintf(w, "%s%s: empty\n", indent, n.Name)
			return true
		}
		fmt.Fprintf(w, "%s%s: min (%.4f, %.4f, %.4f) max (%.4f, %.4f, %.4f)\n", indent, n.Name,
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
		return true
	})

	if box.IsEmpty() {
		fmt.Fprintln(w, "\nModel bounds: empty")
		return
	}
	size, center := box.Size(), box.Center()
	fmt.Fprintf(w, "\nModel size:   %.4f x %.4f x %.4f\n", size.X, size.Y, size.Z)
	fmt.Fprintf(w, "Model center: (%.4f, %.4f, %.4f)\n", center.X, center.Y, center.Z)
}

// cmdNormals computes normals for every node and prints a summary.
func cmdNormals(w io.Writer, root *mesh.Node, opts mesh.Options) {
	fmt.Fprintf(w, "%-24s %8s %8s %10s  %s\n", "Node", "Faces", "Points", "Degenerate", "First normal")

	var faces, degenerate int
	start := time.Now()
	root.Walk(func(n *mesh.Node, depth int) bool {
		name := strings.Repeat("  ", depth) + n.Name
		if len(n.CoordIndex) == 0 {
			fmt.Fprintf(w, "%-24s %8d %8d %10s\n", name, 0, len(n.Points), "-")
			return true
		}

		n.ComputeFaceNormals(opts)
		sample := n.FaceNormals()[0]
		if opts.SmoothShading {
			if vn, _ := n.ModelNormals(); opts.PreferModelNormals && len(vn) > 0 {
				n.VerifyAndRepairVertexNormals(opts)
			} else {
				n.ComputeVertexNormals(opts)
				sample = n.VertexNormals()[0][0]
			}
		}

		faces += len(n.CoordIndex)
		degenerate += n.DegenerateFaceCount()
		fmt.Fprintf(w, "%-24s %8d %8d %10d  (%.4f, %.4f, %.4f)\n", name,
			len(n.CoordIndex), len(n.Points), n.DegenerateFaceCount(), sample.X, sample.Y, sample.Z)
		return true
	})

	shading := "flat"
	switch {
	case opts.SmoothShading && opts.PreferModelNormals:
		shading = "model"
	case opts.SmoothShading:
		shading = "smooth"
	}
	fmt.Fprintf(w, "\nTotal: %d faces, %d degenerate, %s shading, %v\n",
		faces, degenerate, shading, time.Since(start).Round(time.Microsecond))
}

// counter is a Rasterizer that tallies what it is asked to draw.
type counter struct {
	faces       int
	byPrimitive map[mesh.Primitive]int
	smooth      int
	depth       int
	maxDepth    int
}

func newCounter() *counter {
	return &counter{byPrimitive: make(map[mesh.Primitive]int)}
}

func (c *counter) PushTransform(mesh.Transform) {
	c.depth++
	c.maxDepth = max(c.maxDepth, c.depth)
}

func (c *counter) PopTransform() {
	c.depth--
}

func (c *counter) DrawFace(_ *mesh.Node, f mesh.Face) {
	c.faces++
	c.byPrimitive[f.Primitive]++
	if f.Smooth() {
		c.smooth++
	}
}

// cmdRender runs every pass and prints what each one would draw.
func cmdRender(w io.Writer, root *mesh.Node, opts mesh.Options) {
	passes := []mesh.Pass{mesh.PassAll, mesh.PassOpaque, mesh.PassTransparent, mesh.PassNone}

	fmt.Fprintf(w, "%-12s %8s %10s %8s %8s %8s %6s\n",
		"Pass", "Faces", "Triangles", "Quads", "Polygons", "Smooth", "Depth")
	for _, pass := range passes {
		c := newCounter()
		root.Render(c, pass, opts)
		fmt.Fprintf(w, "%-12s %8d %10d %8d %8d %8d %6d\n", pass, c.faces,
			c.byPrimitive[mesh.Triangles], c.byPrimitive[mesh.Quads], c.byPrimitive[mesh.Polygon],
			c.smooth, c.maxDepth)
	}
}
