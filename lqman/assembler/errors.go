package assembler

import "errors"

var (
	// ErrInvalidPsbt indicates a malformed or unparseable PSET.
	ErrInvalidPsbt = errors.New("assembler: invalid pset")

	// ErrInvalidSignature indicates a missing or failing input signature.
	ErrInvalidSignature = errors.New("assembler: invalid signature")

	// ErrFinalizationFailed indicates the PSET could not be finalized or extracted.
	ErrFinalizationFailed = errors.New("assembler: finalization failed")
)
