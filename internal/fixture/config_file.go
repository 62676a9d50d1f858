package fixture

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations and the policy to
// make TOML friendly.
type FileConfig struct {
	BasePort       int    `toml:"base_port"`
	InstanceOffset int    `toml:"instance_offset"`
	Policy         string `toml:"policy"`
	CrashPath      string `toml:"crash_path"`
	CrashDelay     string `toml:"crash_delay"`
	FlagFile       string `toml:"flag_file"`
	BindHost       string `toml:"bind_host"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path,
// ~/.crashfix/config.toml, if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".crashfix", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map). Like the
// rest of the resolver it never fails; bad values keep their defaults.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	if fc.BasePort > 0 && !changed["port"] {
		cfg.BasePort = fc.BasePort
	}
	if fc.InstanceOffset > 0 && !changed["instance"] {
		cfg.InstanceOffset = fc.InstanceOffset
	}

	s.setPolicyFromString("policy", fc.Policy, &cfg.Policy)
	s.setString("crash-path", fc.CrashPath, &cfg.CrashPath)
	s.setDuration("crash-delay", fc.CrashDelay, &cfg.CrashDelay)
	s.setString("flag-file", fc.FlagFile, &cfg.FlagFile)
	s.setString("bind", fc.BindHost, &cfg.BindHost)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
