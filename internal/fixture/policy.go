package fixture

import (
	"fmt"
	"os"
	"strings"
)

// EnableCrashEnv is the boolean external switch consulted per request by
// PolicyWhenFlag when no flag file is configured. The supervisor sets it when
// spawning an instance it intends to crash on demand.
const EnableCrashEnv = "ENABLE_CRASH"

// CrashPolicy decides, per request, whether the fixture terminates abnormally
// after responding. It is fixed for the process lifetime.
type CrashPolicy int

const (
	// PolicyNever never terminates.
	PolicyNever CrashPolicy = iota
	// PolicyAlways terminates after the first response.
	PolicyAlways
	// PolicyOnPath terminates when the request target equals the crash path.
	PolicyOnPath
	// PolicyWhenFlag terminates when the external crash switch is set,
	// gated by the crash path unless the path gate is cleared.
	PolicyWhenFlag
)

// String returns the policy name as accepted by ParsePolicy.
func (p CrashPolicy) String() string {
	switch p {
	case PolicyNever:
		return "never"
	case PolicyAlways:
		return "always"
	case PolicyOnPath:
		return "on-path"
	case PolicyWhenFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name. Unknown names return PolicyWhenFlag and
// ok=false; the caller keeps its default rather than failing startup.
func ParsePolicy(s string) (CrashPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "never":
		return PolicyNever, true
	case "always":
		return PolicyAlways, true
	case "on-path", "onpath", "path":
		return PolicyOnPath, true
	case "flag", "when-flag", "env":
		return PolicyWhenFlag, true
	default:
		return PolicyWhenFlag, false
	}
}

// requestTarget extracts the request target from the first line of an inbound
// request, e.g. "/crash" from "GET /crash HTTP/1.1". Malformed input returns
// an empty string; only the first line is ever inspected.
func requestTarget(request []byte) string {
	line := string(request)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

// decider evaluates the crash policy against one request. flagSet reports the
// external switch for PolicyWhenFlag; it is a side-effecting read performed
// per request, not cached.
type decider struct {
	policy    CrashPolicy
	crashPath string
	flagSet   func() bool
}

func newDecider(cfg Config, flagSet func() bool) decider {
	if flagSet == nil {
		flagSet = func() bool { return os.Getenv(EnableCrashEnv) == "true" }
	}
	return decider{policy: cfg.Policy, crashPath: cfg.CrashPath, flagSet: flagSet}
}

// shouldCrash reports whether the fixture must terminate after responding to
// this request, and why.
func (d decider) shouldCrash(request []byte) (bool, string) {
	switch d.policy {
	case PolicyNever:
		return false, ""
	case PolicyAlways:
		return true, "policy is always"
	case PolicyOnPath:
		if target := requestTarget(request); target == d.crashPath {
			return true, fmt.Sprintf("request for %s", target)
		}
		return false, ""
	case PolicyWhenFlag:
		if !d.flagSet() {
			return false, ""
		}
		// Empty crash path disables the gate: the switch alone decides.
		if d.crashPath == "" {
			return true, "crash switch set"
		}
		if target := requestTarget(request); target == d.crashPath {
			return true, fmt.Sprintf("crash switch set and request for %s", target)
		}
		return false, ""
	default:
		return false, ""
	}
}
