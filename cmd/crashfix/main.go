package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/nglmercer/crashfix/internal/fixture"
)

const helpDescription = `
A test fixture server that crashes on cue.

Meant to be spawned by a process supervisor under test: it binds
base port + instance offset, prints its port and PID for the
supervisor to observe, answers every connection with a fixed 200
response, and dies abnormally when its crash policy fires.

Policies:
  never     never terminate
  always    terminate after the first response
  on-path   terminate on an exact request-path match
  flag      terminate when the ENABLE_CRASH switch (or --flag-file)
            is set and the crash path matches
`

var exampleUsage = strings.TrimSpace(`
  PORT=9000 NODE_APP_INSTANCE=2 crashfix
  crashfix 8080 --policy on-path --crash-path /crash
  ENABLE_CRASH=true crashfix --policy flag
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := fixture.DefaultConfig()
	policyName := cfg.Policy.String()
	var cfgPath string

	log := fixture.Logger()

	root := &cobra.Command{
		Use:     "crashfix [port]",
		Short:   "A test fixture server that crashes on cue",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Args:    cobra.MaximumNArgs(1),
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Precedence: flags > positional port > env > config file >
			// defaults. Resolution never fails; malformed inputs fall back
			// to defaults so the supervisor can spawn the fixture under any
			// environment.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			fixture.ResolveConfig(&cfg, policyName, cfgPath, args, changed)
			log.Info().Interface("config", cfg).Msg("configuration")

			// Give the supervisor a beat to register the spawn before the
			// readiness line appears.
			time.Sleep(200 * time.Millisecond)

			return fixture.Run(cfg)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.crashfix/config.toml)")
	root.Flags().IntVar(&cfg.BasePort, "port", cfg.BasePort, "base port (instance offset is added)")
	root.Flags().IntVar(&cfg.InstanceOffset, "instance", cfg.InstanceOffset, "logical replica index, added to the base port")

	root.Flags().StringVar(&policyName, "policy", policyName, "crash policy: never, always, on-path, flag")
	root.Flags().StringVar(&cfg.CrashPath, "crash-path", cfg.CrashPath, "request path that triggers the crash")
	root.Flags().DurationVar(&cfg.CrashDelay, "crash-delay", cfg.CrashDelay, "best-effort flush delay before dying")
	root.Flags().StringVar(&cfg.FlagFile, "flag-file", cfg.FlagFile, "crash switch file for the flag policy (set = file exists)")
	root.Flags().StringVar(&cfg.BindHost, "bind", cfg.BindHost, "address to bind")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("crashfix")
		os.Exit(1)
	}
}
