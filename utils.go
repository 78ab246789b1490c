package main

import (
	"flag"
	"time"

	"scheduler/config"
)

type commandlineFlags struct {
	configPath string
	envPath    string
	set        map[string]bool

	port           *int
	peerPortBase   *int
	policy         *string
	startupTimeout *time.Duration
	settleDelay    *time.Duration
	logLevel       *string
}

/*
 * Parse command line arguments. Only flags given explicitly
 * override the config file.
 */
func parseCommandlineFlags(args []string) (*commandlineFlags, error) {
	flagSet := flag.NewFlagSet("scheduler", flag.ContinueOnError)
	defaults := config.Default()

	flags := commandlineFlags{set: make(map[string]bool)}
	flagSet.StringVar(&flags.configPath, "config", "scheduler.yaml", "Path to yaml config file")
	flagSet.StringVar(&flags.envPath, "env", ".env", "Path to env file")
	flags.port = flagSet.Int("port", defaults.Port, "Scheduler listening port")
	flags.peerPortBase = flagSet.Int("pbase", defaults.PeerPortBase, "Base added to port bytes from peers")
	flags.policy = flagSet.String("policy", defaults.Policy, "Elevator selection policy (first|nearest)")
	flags.startupTimeout = flagSet.Duration("timeout", defaults.StartupTimeout, "Startup handshake timeout, 0 waits forever")
	flags.settleDelay = flagSet.Duration("settle", defaults.SettleDelay, "Delay between handshake and dispatch")
	flags.logLevel = flagSet.String("log", defaults.LogLevel, "Log level")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	flagSet.Visit(func(f *flag.Flag) {
		flags.set[f.Name] = true
	})

	return &flags, nil
}

func (flags *commandlineFlags) apply(c *config.Config) {
	if flags.set["port"] {
		c.Port = *flags.port
	}
	if flags.set["pbase"] {
		c.PeerPortBase = *flags.peerPortBase
	}
	if flags.set["policy"] {
		c.Policy = *flags.policy
	}
	if flags.set["timeout"] {
		c.StartupTimeout = *flags.startupTimeout
	}
	if flags.set["settle"] {
		c.SettleDelay = *flags.settleDelay
	}
	if flags.set["log"] {
		c.LogLevel = *flags.logLevel
	}
}
