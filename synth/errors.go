package synth

import "errors"

var (
	// ErrDead indicates a model state offers no options and is not
	// complete: no bind, dataflow, refactor or deadlock-resolution option
	// remains but unbound functions or untransferred variables do (§4.G).
	ErrDead = errors.New("synth: node is dead, no options and not complete")
	// ErrTimeout indicates the search deadline elapsed before a complete
	// node was reached; the best node found so far is still returned
	// alongside this error so callers may inspect partial progress.
	ErrTimeout = errors.New("synth: deadline exceeded before completion")
	// ErrNoStart indicates Run was called with a nil starting model.
	ErrNoStart = errors.New("synth: no starting model")
)
