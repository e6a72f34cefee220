package envcheck

import "errors"

var (
	// ErrInsecureEnvironment is wrapped by Result.Err for insecure results.
	ErrInsecureEnvironment = errors.New("envcheck: insecure environment")

	// ErrProbeTimeout marks a probe that did not answer in time. The probe
	// counts as failed.
	ErrProbeTimeout = errors.New("envcheck: probe timeout")
)
