// Package crashfix provides a deliberately crashable test server for
// exercising process supervisors.
//
// The fixture binds base port + instance offset, answers every connection
// with a fixed 200 response, and terminates abnormally when its crash policy
// fires — so a supervisor's crash-detection and respawn logic can be tested
// against a process that dies on cue.
//
// Example usage:
//
//	cfg := crashfix.DefaultConfig()
//	cfg.BasePort = 9000
//	cfg.InstanceOffset = 2
//	if err := crashfix.Run(cfg); err != nil {
//	    log.Fatal(err)
//	}
package crashfix

import (
	"github.com/rs/zerolog"

	"github.com/nglmercer/crashfix/internal/fixture"
)

// Config holds the configuration for the fixture server.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = fixture.Config

// CrashPolicy decides whether the fixture terminates abnormally after
// responding to a request.
type CrashPolicy = fixture.CrashPolicy

// Crash policies. See ParsePolicy for the accepted names.
const (
	PolicyNever    = fixture.PolicyNever
	PolicyAlways   = fixture.PolicyAlways
	PolicyOnPath   = fixture.PolicyOnPath
	PolicyWhenFlag = fixture.PolicyWhenFlag
)

// Run binds the configured port and serves until the listener fails or the
// crash policy terminates the process. Bind failure returns an error; it is
// never retried.
func Run(cfg Config) error {
	return fixture.Run(cfg)
}

// DefaultConfig returns a Config with default values: port 8080, instance 0,
// and the flag-gated crash policy.
func DefaultConfig() Config {
	return fixture.DefaultConfig()
}

// ParsePolicy parses a policy name ("never", "always", "on-path", "flag").
// Unknown names report ok=false and the default policy.
func ParsePolicy(s string) (CrashPolicy, bool) {
	return fixture.ParsePolicy(s)
}

// Logger returns the package-level zerolog logger used by the fixture.
func Logger() zerolog.Logger {
	return fixture.Logger()
}
