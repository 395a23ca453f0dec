package mesh

import (
	"testing"

	"github.com/Faultbox/meshprep/pkg/math"
)

func TestNormalizePoints(t *testing.T) {
	n := NewNode("scaled")
	n.Points = []math.Vec3{{X: 2, Y: -8, Z: 4}, {X: 1, Y: 1, Z: 1}}
	n.NormalizePoints()

	got := n.NormalizedPoints()
	want := []math.Vec3{{X: 0.25, Y: -1, Z: 0.5}, {X: 0.125, Y: 0.125, Z: 0.125}}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("normalized[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if n.State(NormalizedPoints) != Ready {
		t.Errorf("state = %v, want ready", n.State(NormalizedPoints))
	}
}

func TestNormalizePointsAllZero(t *testing.T) {
	n := NewNode("origin")
	n.Points = []math.Vec3{{}, {}, {}}
	n.NormalizePoints()

	for i, p := range n.NormalizedPoints() {
		if !p.IsFinite() || !p.IsZero() {
			t.Errorf("normalized[%d] = %v, want finite zero", i, p)
		}
	}
}

func TestCubeFaceNormals(t *testing.T) {
	n := unitCube("cube")
	n.ComputeFaceNormals(DefaultOptions())

	got := n.FaceNormals()
	if len(got) != len(n.CoordIndex) {
		t.Fatalf("len(FaceNormals) = %d, want %d", len(got), len(n.CoordIndex))
	}
	for i, want := range cubeFaceNormals {
		if got[i] != want {
			t.Errorf("face %d normal = %v, want %v", i, got[i], want)
		}
	}
	if n.DegenerateFaceCount() != 0 {
		t.Errorf("DegenerateFaceCount() = %d, want 0", n.DegenerateFaceCount())
	}
}

func TestFaceNormalMatchesNewell(t *testing.T) {
	// A non-planar pentagon; Newell's method still yields the best-fit plane.
	n := NewNode("pentagon")
	n.Points = []math.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 2, Y: 0, Z: 0.1},
		{X: 3, Y: 1.5, Z: 0},
		{X: 1, Y: 3, Z: -0.1},
		{X: -1, Y: 1.5, Z: 0},
	}
	n.CoordIndex = [][]int{{0, 1, 2, 3, 4}}
	n.ComputeFaceNormals(DefaultOptions())

	// Hand-computed Newell sum over the points divided by 3 (the largest
	// coordinate), then normalized.
	var want math.Vec3
	ring := n.CoordIndex[0]
	for i := range ring {
		u := n.Points[ring[i]].Scale(1.0 / 3)
		v := n.Points[ring[(i+1)%len(ring)]].Scale(1.0 / 3)
		want.X += (u.Y - v.Y) * (u.Z + v.Z)
		want.Y += (u.Z - v.Z) * (u.X + v.X)
		want.Z += (u.X - v.X) * (u.Y + v.Y)
	}
	want, _ = want.Normalize()

	got := n.FaceNormals()[0]
	if !isUnit(got) {
		t.Errorf("normal %v is not unit length", got)
	}
	if !near(got, want, 1e-5) {
		t.Errorf("normal = %v, want %v", got, want)
	}
	if got.Z <= 0 {
		t.Errorf("counter-clockwise ring should face +Z, got %v", got)
	}
}

func TestDegenerateFaceFallback(t *testing.T) {
	tests := []struct {
		name   string
		points []math.Vec3
		face   []int
		want   math.Vec3
	}{
		{
			name:   "repeated point",
			points: []math.Vec3{{X: 1, Y: 2, Z: 3}},
			face:   []int{0, 0, 0},
			want:   math.Vec3{Y: 1},
		},
		{
			name:   "collinear",
			points: []math.Vec3{{}, {Z: 1}, {Z: 2}},
			face:   []int{0, 1, 2},
			want:   math.Vec3{Y: 1},
		},
		{
			name:   "sliver facing z",
			points: []math.Vec3{{}, {X: 1}, {X: 2, Y: 1e-8}},
			face:   []int{0, 1, 2},
			want:   math.Vec3{Z: 1},
		},
		{
			name:   "no points at all",
			points: nil,
			face:   []int{0, 1, 2},
			want:   math.Vec3{Y: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNode(tt.name)
			n.Points = tt.points
			n.CoordIndex = [][]int{tt.face}
			n.ComputeFaceNormals(DefaultOptions())

			got := n.FaceNormals()[0]
			if got != tt.want {
				t.Errorf("fallback normal = %v, want %v", got, tt.want)
			}
			if !got.IsFinite() {
				t.Errorf("fallback normal %v is not finite", got)
			}
			if n.DegenerateFaceCount() != 1 {
				t.Errorf("DegenerateFaceCount() = %d, want 1", n.DegenerateFaceCount())
			}
		})
	}
}

func TestAreaWeightedNormals(t *testing.T) {
	n := NewNode("tri")
	n.Points = []math.Vec3{{}, {X: 1}, {Y: 1}}
	n.CoordIndex = [][]int{{0, 1, 2}}
	n.ComputeFaceNormals(DefaultOptions())

	// Newell sum is (0,0,1) for this triangle; scaled by its squared length.
	if got, want := n.AreaWeightedNormals()[0], (math.Vec3{Z: 1}); got != want {
		t.Errorf("raw x area = %v, want %v", got, want)
	}
}

func TestFaceNormalsIdempotent(t *testing.T) {
	n := grid("grid", 4, 4)
	opts := DefaultOptions()
	n.ComputeFaceNormals(opts)
	first := append([]math.Vec3(nil), n.FaceNormals()...)

	// Changing the points without invalidating must not be observed.
	n.Points[0] = math.Vec3{X: 100, Y: 100, Z: 100}
	n.ComputeFaceNormals(opts)
	for i, v := range n.FaceNormals() {
		if v != first[i] {
			t.Fatalf("face %d recomputed: %v != %v", i, v, first[i])
		}
	}

	n.Invalidate()
	if n.State(FaceNormals) != Uninitialized {
		t.Fatalf("state after Invalidate = %v", n.State(FaceNormals))
	}
	n.ComputeFaceNormals(opts)
	if n.FaceNormals()[0] == first[0] {
		t.Error("face 0 should change after Invalidate with moved point")
	}
}

func TestModelFaceNormalsVerbatim(t *testing.T) {
	n := unitCube("supplied")
	n.ModelFaceNormals = []math.Vec3{
		{X: 0.5}, {X: 0.5}, {X: 0.5}, {X: 0.5}, {X: 0.5}, {X: 0.5},
	}

	opts := DefaultOptions()
	opts.PreferModelNormals = true
	n.ComputeFaceNormals(opts)

	for i, v := range n.FaceNormals() {
		if v != (math.Vec3{X: 0.5}) {
			t.Errorf("face %d normal = %v, want supplied (0.5,0,0)", i, v)
		}
	}
	// The smoothing weights are still derived from geometry.
	if got := n.AreaWeightedNormals()[1]; got.Z <= 0 {
		t.Errorf("raw x area for +Z face = %v, want positive Z", got)
	}
}

func TestModelFaceNormalsIgnoredByDefault(t *testing.T) {
	n := unitCube("ignored")
	n.ModelFaceNormals = make([]math.Vec3, 6)
	n.ComputeFaceNormals(DefaultOptions())

	for i, want := range cubeFaceNormals {
		if got := n.FaceNormals()[i]; got != want {
			t.Errorf("face %d normal = %v, want computed %v", i, got, want)
		}
	}
}

func TestPerVertexNormalsWorkaround(t *testing.T) {
	n := unitCube("exporter")
	// One normal per point, written into the per-face slot.
	for _, p := range n.Points {
		d, _ := p.Normalize()
		n.ModelFaceNormals = append(n.ModelFaceNormals, d)
	}

	opts := DefaultOptions()
	opts.PreferModelNormals = true
	n.ComputeFaceNormals(opts)

	vn, idx := n.ModelNormals()
	if len(vn) != len(n.Points) {
		t.Fatalf("vertex normals = %d, want %d", len(vn), len(n.Points))
	}
	if len(idx) != len(n.CoordIndex) || idx[1][2] != n.CoordIndex[1][2] {
		t.Fatalf("normal index should mirror CoordIndex, got %v", idx)
	}
	// Each face normal is the normalized sum of its corner diagonals.
	for i, want := range cubeFaceNormals {
		if got := n.FaceNormals()[i]; !near(got, want, 1e-6) {
			t.Errorf("face %d normal = %v, want %v", i, got, want)
		}
	}
}

func TestFaceNormalsFromModelVertexNormals(t *testing.T) {
	n := NewNode("tri")
	n.Points = []math.Vec3{{}, {X: 1}, {Y: 1}}
	n.CoordIndex = [][]int{{0, 1, 2}, {0, 1, 2}}
	n.ModelVertexNormals = []math.Vec3{{X: 1}, {Y: 1}, {X: -1}, {Y: -1}}
	n.NormalIndex = [][]int{{0, 1, 1}, {0, 2, 0}}

	opts := DefaultOptions()
	opts.PreferModelNormals = true
	n.ComputeFaceNormals(opts)

	want0, _ := math.Vec3{X: 1, Y: 2}.Normalize()
	if got := n.FaceNormals()[0]; !near(got, want0, 1e-6) {
		t.Errorf("face 0 normal = %v, want %v", got, want0)
	}
	// (1,0,0)+(-1,0,0)+(1,0,0) = (1,0,0).
	if got := n.FaceNormals()[1]; got != (math.Vec3{X: 1}) {
		t.Errorf("face 1 normal = %v, want (1,0,0)", got)
	}
}

func TestSupplyVertexNormalMismatchUsesGeometry(t *testing.T) {
	n := NewNode("tri")
	n.Points = []math.Vec3{{}, {X: 1}, {Y: 1}}
	n.CoordIndex = [][]int{{0, 1, 2}}
	n.ModelVertexNormals = []math.Vec3{{X: 1}}
	n.NormalIndex = [][]int{{0, 0}}

	opts := DefaultOptions()
	opts.PreferModelNormals = true
	n.ComputeFaceNormals(opts)

	if got := n.FaceNormals()[0]; got != (math.Vec3{Z: 1}) {
		t.Errorf("normal = %v, want geometric (0,0,1)", got)
	}
}

func TestVertexNormalsCoplanar(t *testing.T) {
	n := NewNode("quad")
	n.Points = []math.Vec3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	n.CoordIndex = [][]int{{0, 1, 2}, {0, 2, 3}}
	n.ComputeVertexNormals(DefaultOptions())

	flat := n.FaceNormals()
	if d := flat[0].Dot(flat[1]); d != 1 {
		t.Fatalf("coplanar dot = %v, want 1", d)
	}
	for f, corners := range n.VertexNormals() {
		if len(corners) != len(n.CoordIndex[f]) {
			t.Fatalf("face %d has %d corner normals", f, len(corners))
		}
		for j, v := range corners {
			if v != flat[f] {
				t.Errorf("face %d corner %d = %v, want flat %v", f, j, v, flat[f])
			}
		}
	}
}

func TestVertexNormalsFineSheet(t *testing.T) {
	const size = 60
	n := NewNode("sheet")
	for y := 0; y <= size; y++ {
		for x := 0; x <= size; x++ {
			n.Points = append(n.Points, math.Vec3{X: float32(x), Y: float32(y)})
		}
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := y*(size+1) + x
			n.CoordIndex = append(n.CoordIndex, []int{i, i + 1, i + size + 2, i + size + 1})
		}
	}
	n.ComputeVertexNormals(DefaultOptions())

	want := math.Vec3{Z: 1}
	if got := n.FaceNormals()[0]; got != want {
		t.Fatalf("face normal = %v, want %v", got, want)
	}
	bad := 0
	for _, corners := range n.VertexNormals() {
		for _, v := range corners {
			if v != want {
				bad++
			}
		}
	}
	if bad != 0 {
		t.Errorf("%d of %d corners differ from %v, e.g. %v", bad, 4*size*size, want, n.VertexNormals()[0][0])
	}
}

func TestSmallFaceInLargeModel(t *testing.T) {
	n := NewNode("large")
	n.Points = []math.Vec3{
		{X: -500, Y: -500, Z: -500}, {X: 500, Y: 500, Z: 500},
		{X: 5}, {X: 5, Y: 0.1}, {X: 5, Z: 0.1},
	}
	n.CoordIndex = [][]int{{2, 3, 4}}
	n.ComputeVertexNormals(DefaultOptions())

	want := math.Vec3{X: 1}
	if got := n.FaceNormals()[0]; got != want {
		t.Errorf("small face normal = %v, want %v", got, want)
	}
	if n.DegenerateFaceCount() != 0 {
		t.Errorf("DegenerateFaceCount() = %d, want 0", n.DegenerateFaceCount())
	}
	for j, v := range n.VertexNormals()[0] {
		if v != want {
			t.Errorf("corner %d = %v, want %v", j, v, want)
		}
	}
}

func TestVertexNormalsWeightlessFace(t *testing.T) {
	// The face is valid but its area weight underflows float32 to zero.
	n := NewNode("speck")
	n.Points = []math.Vec3{{}, {X: 1e-12}, {Y: 1e-12}, {X: 1, Y: 1, Z: 1}}
	n.CoordIndex = [][]int{{0, 1, 2}}
	n.ComputeVertexNormals(DefaultOptions())

	if w := n.AreaWeightedNormals()[0]; !w.IsZero() {
		t.Fatalf("area weight = %v, want zero", w)
	}
	want := math.Vec3{Z: 1}
	if got := n.FaceNormals()[0]; got != want {
		t.Fatalf("face normal = %v, want %v", got, want)
	}
	for j, v := range n.VertexNormals()[0] {
		if v != want {
			t.Errorf("corner %d = %v, want face normal %v", j, v, want)
		}
	}
}

func TestVertexNormalsPerpendicularNotBlended(t *testing.T) {
	n := unitCube("cube")
	n.ComputeVertexNormals(DefaultOptions())

	for f, corners := range n.VertexNormals() {
		for j, v := range corners {
			if v != cubeFaceNormals[f] {
				t.Errorf("face %d corner %d = %v, want %v", f, j, v, cubeFaceNormals[f])
			}
		}
	}
}

func TestVertexNormalsHinge(t *testing.T) {
	n := NewNode("hinge")
	n.Points = []math.Vec3{
		{}, {X: 1}, {Y: 1}, {X: 0.5, Y: -1, Z: 0.5},
	}
	n.CoordIndex = [][]int{{0, 1, 2}, {1, 0, 3}}
	n.ComputeVertexNormals(DefaultOptions())

	flat := n.FaceNormals()
	vn := n.VertexNormals()

	// Unshared corners keep their own facet direction.
	if !near(vn[0][2], flat[0], 1e-6) {
		t.Errorf("unshared corner of A = %v, want %v", vn[0][2], flat[0])
	}
	if !near(vn[1][2], flat[1], 1e-6) {
		t.Errorf("unshared corner of B = %v, want %v", vn[1][2], flat[1])
	}

	// Shared corners lean between both facets.
	for _, v := range []math.Vec3{vn[0][0], vn[0][1], vn[1][0], vn[1][1]} {
		if !isUnit(v) {
			t.Errorf("shared corner %v is not unit length", v)
		}
		if v.Dot(flat[0]) >= 1 || v.Dot(flat[1]) >= 1 {
			t.Errorf("shared corner %v was not blended", v)
		}
		if v.Y <= 0 || v.Z <= 0 {
			t.Errorf("shared corner %v should point between +Z and the hinge face", v)
		}
	}
}

func TestVertexNormalsMatchBruteForce(t *testing.T) {
	for _, workers := range []int{1, 4} {
		n := grid("grid", 12, 12)
		opts := DefaultOptions()
		opts.Workers = workers
		n.ComputeVertexNormals(opts)

		want := bruteForceVertexNormals(n)
		got := n.VertexNormals()
		for f := range want {
			for j := range want[f] {
				if got[f][j] != want[f][j] {
					t.Fatalf("workers=%d face %d corner %d = %v, want %v",
						workers, f, j, got[f][j], want[f][j])
				}
			}
		}
	}
}

func TestVertexNormalsParallelMatchesSequential(t *testing.T) {
	seq := grid("seq", 30, 30)
	par := grid("par", 30, 30)

	seqOpts := DefaultOptions()
	seqOpts.Workers = 1
	parOpts := DefaultOptions()
	parOpts.Workers = 8

	seq.ComputeVertexNormals(seqOpts)
	par.ComputeVertexNormals(parOpts)

	a, b := seq.VertexNormals(), par.VertexNormals()
	if len(a) != len(b) {
		t.Fatalf("face count differs: %d vs %d", len(a), len(b))
	}
	for f := range a {
		for j := range a[f] {
			if a[f][j] != b[f][j] {
				t.Fatalf("face %d corner %d: sequential %v, parallel %v", f, j, a[f][j], b[f][j])
			}
		}
	}
}

func TestVertexNormalsIdempotent(t *testing.T) {
	n := grid("grid", 5, 5)
	opts := DefaultOptions()
	n.ComputeVertexNormals(opts)
	first := n.VertexNormals()

	n.ComputeVertexNormals(opts)
	second := n.VertexNormals()
	if &first[0] != &second[0] {
		t.Error("second call rebuilt the vertex normals")
	}
	if n.State(VertexNormals) != Ready || n.State(FaceNormals) != Ready {
		t.Errorf("states = %v/%v, want ready", n.State(VertexNormals), n.State(FaceNormals))
	}
}

func TestRepairNormal(t *testing.T) {
	tests := []struct {
		name   string
		in     math.Vec3
		want   math.Vec3
		wantOK bool
	}{
		{"x is one", math.Vec3{X: 1, Y: 0.2, Z: -0.1}, math.Vec3{X: 1}, true},
		{"y is one", math.Vec3{X: 0.3, Y: 1}, math.Vec3{Y: 1}, true},
		{"z is one", math.Vec3{Y: -0.4, Z: 1}, math.Vec3{Z: 1}, true},
		{"tiny components", math.Vec3{X: 1e-9, Y: -1e-9, Z: 2}, math.Vec3{Z: 1}, true},
		{"already unit", math.Vec3{X: 0.6, Y: 0.8}, math.Vec3{X: 0.6, Y: 0.8}, true},
		{"zero", math.Vec3{}, math.Vec3{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := repairNormal(tt.in)
			if ok != tt.wantOK {
				t.Errorf("repairNormal(%v) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if !near(got, tt.want, 1e-6) {
				t.Errorf("repairNormal(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVerifyAndRepairVertexNormals(t *testing.T) {
	n := NewNode("tri")
	n.Points = []math.Vec3{{}, {X: 1}, {Y: 1}}
	n.CoordIndex = [][]int{{0, 1, 2}}
	n.ModelVertexNormals = []math.Vec3{{Z: 1, X: 0.3}, {Z: 3}, {Z: 2, Y: 1e-9}}
	n.NormalIndex = [][]int{{0, 1, 2}}
	original := append([]math.Vec3(nil), n.ModelVertexNormals...)

	opts := DefaultOptions()
	opts.PreferModelNormals = true
	n.VerifyAndRepairVertexNormals(opts)

	vn, _ := n.ModelNormals()
	for i, v := range vn {
		if v != (math.Vec3{Z: 1}) {
			t.Errorf("repaired[%d] = %v, want (0,0,1)", i, v)
		}
	}
	for i := range original {
		if n.ModelVertexNormals[i] != original[i] {
			t.Errorf("loader normal %d was modified", i)
		}
	}
	if n.State(RepairedModelNormals) != Ready {
		t.Errorf("state = %v, want ready", n.State(RepairedModelNormals))
	}
}

func BenchmarkVertexNormals(b *testing.B) {
	for _, workers := range []int{1, 0} {
		name := "sequential"
		if workers == 0 {
			name = "parallel"
		}
		b.Run(name, func(b *testing.B) {
			opts := DefaultOptions()
			opts.Workers = workers
			n := grid("bench", 40, 40)
			for i := 0; i < b.N; i++ {
				n.Invalidate()
				n.ComputeVertexNormals(opts)
			}
		})
	}
}
