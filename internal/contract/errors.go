package contract

import "errors"

var (
	// ErrNoGateDefinition is returned when a contract declares neither
	// requiredEvals nor a policy block, leaving nothing to gate on.
	ErrNoGateDefinition = errors.New("contract defines neither requiredEvals nor policy")

	// ErrUnsupportedVersion is returned for contract documents whose
	// version field is not recognized by this build.
	ErrUnsupportedVersion = errors.New("unsupported contract version")
)
