package mesh

// CacheState is the lifecycle of one derived artifact of a node.
type CacheState uint8

const (
	Uninitialized CacheState = iota
	Computing
	Ready
)

func (s CacheState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Computing:
		return "computing"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Artifact names a piece of derived node state that is computed lazily.
type Artifact uint8

const (
	NormalizedPoints Artifact = iota
	FaceNormals
	VertexNormals
	RepairedModelNormals
	OwnBounds
	FullBounds

	numArtifacts
)

func (a Artifact) String() string {
	switch a {
	case NormalizedPoints:
		return "normalized-points"
	case FaceNormals:
		return "face-normals"
	case VertexNormals:
		return "vertex-normals"
	case RepairedModelNormals:
		return "repaired-model-normals"
	case OwnBounds:
		return "own-bounds"
	case FullBounds:
		return "full-bounds"
	}
	return "unknown"
}

// cacheRecord holds the state of every artifact of a node in one place, so
// invalidation is a single reset.
type cacheRecord struct {
	states [numArtifacts]CacheState
}

func (c *cacheRecord) state(a Artifact) CacheState {
	return c.states[a]
}

// begin moves a from Uninitialized to Computing. It returns false when the
// artifact is already being computed or is ready.
func (c *cacheRecord) begin(a Artifact) bool {
	if c.states[a] != Uninitialized {
		return false
	}
	c.states[a] = Computing
	return true
}

func (c *cacheRecord) finish(a Artifact) {
	c.states[a] = Ready
}

func (c *cacheRecord) reset() {
	c.states = [numArtifacts]CacheState{}
}
