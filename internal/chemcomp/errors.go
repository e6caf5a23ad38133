package chemcomp

import "errors"

var (
	// ErrNoIdentity means the definition has no top-level identity record.
	ErrNoIdentity = errors.New("definition has no chem_comp identity record")

	// ErrInvalidCharge means the formal charge is not an integer or placeholder.
	ErrInvalidCharge = errors.New("invalid formal charge")

	// ErrUnknownDescriptorKind means a descriptor kind outside the closed set.
	ErrUnknownDescriptorKind = errors.New("unknown descriptor kind")
)
