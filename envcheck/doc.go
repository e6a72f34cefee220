// Package envcheck decides whether the runtime environment is trustworthy
// enough to call the AI backend.
//
// Each signal (debug build, attached debugger, emulator, root access) is a
// Probe. A Checker runs its probes in parallel and folds their findings into
// a single Result: Secure, or Insecure with the reason of the first failing
// probe in registration order and the messages of every failing probe.
//
// Probes read the machine only through an Environment, so tests can supply a
// MapEnvironment and get deterministic results. Results are never cached;
// every request is checked afresh.
//
// # Basic Usage
//
//	checker := envcheck.NewChecker(envcheck.OS(), envcheck.CheckerConfig{},
//	    envcheck.DefaultProbes(envcheck.ProbeConfig{})...)
//
//	if res := checker.Check(ctx); !res.Secure() {
//	    return res.Err()
//	}
package envcheck
