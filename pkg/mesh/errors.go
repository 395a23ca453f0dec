package mesh

import "errors"

// Validation errors returned by (*Node).Validate. Geometry computation itself
// never fails; these only surface at the loader boundary.
var (
	ErrFaceTooSmall       = errors.New("face has fewer than 3 vertices")
	ErrIndexOutOfRange    = errors.New("point index out of range")
	ErrNormalIndexShape   = errors.New("normal index does not mirror face layout")
	ErrNormalOutOfRange   = errors.New("normal index out of range")
	ErrMaterialIndexShape = errors.New("material index longer than face list")
	ErrCycle              = errors.New("node hierarchy contains a cycle")
	ErrNilChild           = errors.New("nil child node")
)
