package fixture

import (
	"strconv"
	"strings"
)

// ResolveConfig applies the full resolution chain to a Config that already
// carries flag-bound values: an explicitly set --policy flag, then the TOML
// config file, then the environment, then the positional port argument.
// Sources earlier in that order win, giving flags > positional > env > file >
// defaults overall. Like the rest of the resolver it never fails; bad input
// is logged and the previous value kept, and the result is normalized via
// Validate.
func ResolveConfig(cfg *Config, policyName, cfgPath string, args []string, changed map[string]bool) {
	if changed["policy"] {
		if p, ok := ParsePolicy(policyName); ok {
			cfg.Policy = p
		} else {
			logger.Warn().Str("policy", policyName).Msg("ignoring unknown crash policy, keeping default")
		}
	}

	if cfgPath == "" {
		cfgPath = DefaultConfigPath()
	}
	if cfgPath != "" && FileExists(cfgPath) {
		fc, err := LoadFileConfig(cfgPath)
		if err != nil {
			logger.Warn().Err(err).Str("path", cfgPath).Msg("ignoring unreadable config file")
		} else {
			ApplyFileConfig(cfg, fc, changed)
		}
	}

	ApplyEnvConfig(cfg, changed)

	if len(args) >= 1 && !changed["port"] {
		if p, err := strconv.Atoi(strings.TrimSpace(args[0])); err == nil {
			cfg.BasePort = p
		} else {
			logger.Warn().Str("arg", args[0]).Msg("ignoring unparseable port argument, keeping default")
		}
	}

	cfg.Validate()
}
