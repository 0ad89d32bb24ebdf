package merge

import "errors"

// Every message is prefixed with "merge: ". Callers match with errors.Is;
// operations wrap these with context via fmt.Errorf("...: %w", ErrX).
var (
	// ErrUnknownChain is returned when a chain is not part of the live state.
	ErrUnknownChain = errors.New("merge: unknown chain")

	// ErrDuplicateNode is returned when a node is registered twice.
	ErrDuplicateNode = errors.New("merge: node already registered")

	// ErrMatrixIndex is returned when a chain id has no slot in the
	// intersection matrix.
	ErrMatrixIndex = errors.New("merge: chain id outside intersection matrix")

	// ErrInvariant is returned by State.Validate for any broken invariant.
	ErrInvariant = errors.New("merge: invariant violated")

	// ErrNoConvergence is returned when the support-chain driver exceeds its
	// iteration ceiling.
	ErrNoConvergence = errors.New("merge: support chain driver did not converge")

	// ErrBadConfig is returned by Config.Validate.
	ErrBadConfig = errors.New("merge: invalid configuration")
)
