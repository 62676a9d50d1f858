package fixture

import (
	"strconv"
	"strings"
	"time"
)

// Defaults for the fixture. The supervisor under test relies on these when it
// spawns instances with a partial environment, so configuration resolution
// must always succeed and land on these values.
const (
	DefaultBasePort   = 8080
	DefaultCrashPath  = "/crash"
	DefaultCrashDelay = 100 * time.Millisecond
	DefaultBindHost   = "0.0.0.0"
)

type Config struct {
	BasePort       int
	InstanceOffset int

	Policy     CrashPolicy
	CrashPath  string
	CrashDelay time.Duration
	FlagFile   string

	BindHost string
}

// DefaultConfig returns a Config with default values. The default policy is
// PolicyWhenFlag: the fixture stays alive until the supervisor flips the
// ENABLE_CRASH switch and hits the crash path.
func DefaultConfig() Config {
	return Config{
		BasePort:   DefaultBasePort,
		Policy:     PolicyWhenFlag,
		CrashPath:  DefaultCrashPath,
		CrashDelay: DefaultCrashDelay,
		BindHost:   DefaultBindHost,
	}
}

// EffectivePort is the concrete TCP port the fixture binds: the base port
// plus this instance's logical offset.
func (c Config) EffectivePort() int {
	return c.BasePort + c.InstanceOffset
}

// Validate normalizes the configuration. It never returns an error: the
// fixture must be spawnable under adverse environments, so out-of-range
// values are clamped back to defaults rather than rejected.
func (c *Config) Validate() {
	if c.BasePort < 0 || c.BasePort > 65535 {
		c.BasePort = DefaultBasePort
	}
	if c.InstanceOffset < 0 {
		c.InstanceOffset = 0
	}
	if c.BasePort+c.InstanceOffset > 65535 {
		c.InstanceOffset = 0
	}
	if c.CrashPath != "" && !strings.HasPrefix(c.CrashPath, "/") {
		c.CrashPath = "/" + c.CrashPath
	}
	if c.CrashDelay < 0 {
		c.CrashDelay = DefaultCrashDelay
	}
	if c.BindHost == "" {
		c.BindHost = DefaultBindHost
	}
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set, and it never fails: unparseable input is logged and the
// previous value kept.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntFromString parses a string to int and sets the destination.
// Malformed input is a warning, not an error.
func (s *configSetter) setIntFromString(flag, value string, dst *int) {
	if value == "" || s.changed[flag] {
		return
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		logger.Warn().Str("flag", flag).Str("value", value).Msg("ignoring unparseable integer, keeping default")
		return
	}
	*dst = i
}

// setDuration parses and sets a duration from string. Malformed input is a
// warning, not an error.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) {
	if value == "" || s.changed[flag] {
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Str("flag", flag).Str("value", value).Msg("ignoring unparseable duration, keeping default")
		return
	}
	*dst = d
}

// setPolicyFromString parses a policy name. Unknown names keep the default.
func (s *configSetter) setPolicyFromString(flag, value string, dst *CrashPolicy) {
	if value == "" || s.changed[flag] {
		return
	}
	p, ok := ParsePolicy(value)
	if !ok {
		logger.Warn().Str("flag", flag).Str("value", value).Msg("ignoring unknown crash policy, keeping default")
		return
	}
	*dst = p
}
