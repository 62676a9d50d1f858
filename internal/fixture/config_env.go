package fixture

import "os"

// Environment variables the supervisor sets when spawning instances. PORT and
// NODE_APP_INSTANCE follow the supervisor's replica-addressing convention;
// the CRASHFIX_* variables cover the remaining knobs.
const (
	BasePortEnv       = "PORT"
	InstanceOffsetEnv = "NODE_APP_INSTANCE"
)

// ApplyEnvConfig applies configuration from environment variables. It
// respects flags that have been explicitly set (changed map) and never fails:
// a malformed variable is logged and its default kept, so the fixture stays
// spawnable under partial or garbled environments.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setIntFromString("port", os.Getenv(BasePortEnv), &cfg.BasePort)
	s.setIntFromString("instance", os.Getenv(InstanceOffsetEnv), &cfg.InstanceOffset)

	s.setPolicyFromString("policy", os.Getenv("CRASHFIX_POLICY"), &cfg.Policy)
	s.setString("crash-path", os.Getenv("CRASHFIX_CRASH_PATH"), &cfg.CrashPath)
	s.setDuration("crash-delay", os.Getenv("CRASHFIX_CRASH_DELAY"), &cfg.CrashDelay)
	s.setString("flag-file", os.Getenv("CRASHFIX_FLAG_FILE"), &cfg.FlagFile)
	s.setString("bind", os.Getenv("CRASHFIX_BIND"), &cfg.BindHost)
}
