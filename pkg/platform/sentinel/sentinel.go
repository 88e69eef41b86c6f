package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors:
//   - ErrNotFound: row does not exist
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrInvalidReference: a foreign key points at a missing row
//   - ErrInvalidValue: a column constraint or type range rejected a value
//   - ErrUnavailable: backing service temporarily unavailable
//
// Validation failures belong in pkg/domain-errors, not here.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidReference = errors.New("invalid reference")
	ErrInvalidValue     = errors.New("invalid value")
	ErrUnavailable      = errors.New("unavailable")
)
