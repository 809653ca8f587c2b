package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/runletapp/crabnode"
	"github.com/runletapp/crabnode/node"
	"github.com/runletapp/crabnode/options"
)

var (
	configPath      string
	dataDir         string
	storageQuota    uint64
	maxPeers        uint32
	discoveryPort   uint16
	logLevel        string
	repoKind        string
	bootstrapPeers  []string
	swarmKeyPath    string
	refreshInterval time.Duration
	gcInterval      time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "crabnode",
	Short:         "Content-addressed storage node manager",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file; flags override its values")
	flags.StringVarP(&dataDir, "data-dir", "d", options.DefaultDataDir(), "Node data directory")
	flags.Uint64Var(&storageQuota, "storage-quota", 1024*1024*1024, "Storage quota in bytes")
	flags.Uint32Var(&maxPeers, "max-peers", 50, "Maximum number of connected peers")
	flags.Uint16VarP(&discoveryPort, "port", "p", 8089, "Port to listen on (0 for random)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&repoKind, "repo", options.RepoBadger, "Repository kind: badger or memory")
	flags.StringSliceVar(&bootstrapPeers, "bootstrap", nil, "Bootstrap peer multiaddr, repeatable")
	flags.StringVar(&swarmKeyPath, "swarm-key", "", "Swarm key file of a private network")
	flags.DurationVar(&refreshInterval, "refresh-interval", 30*time.Second, "Network info refresh interval (0 disables)")
	flags.DurationVar(&gcInterval, "gc-interval", 1*time.Hour, "Garbage collection interval (0 disables)")
}

// settingsOptions builds the options from the config file overridden by every
// flag set on the command line
func settingsOptions(cmd *cobra.Command) ([]options.Option, error) {
	opts, err := options.LoadFileOptional(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Changed(name)
	}

	// Flag defaults match options.SetDefaults, only explicit flags are applied
	if changed("data-dir") {
		opts = append(opts, options.DataDir(dataDir))
	}
	if changed("storage-quota") {
		opts = append(opts, options.StorageQuota(storageQuota))
	}
	if changed("max-peers") {
		opts = append(opts, options.MaxPeers(maxPeers))
	}
	if changed("port") {
		opts = append(opts, options.DiscoveryPort(discoveryPort))
	}
	if changed("log-level") {
		opts = append(opts, options.LogLevel(logLevel))
	}
	if changed("repo") {
		opts = append(opts, options.RepoKind(repoKind))
	}
	if changed("bootstrap") {
		opts = append(opts, options.BootstrapPeersAppend(bootstrapPeers))
	}
	if changed("swarm-key") {
		opts = append(opts, options.SwarmKeyPath(swarmKeyPath))
	}
	if changed("refresh-interval") {
		opts = append(opts, options.RefreshInterval(refreshInterval))
	}
	if changed("gc-interval") {
		opts = append(opts, options.GCInterval(gcInterval))
	}

	return append(opts, options.Context(cmd.Context())), nil
}

func newManager(cmd *cobra.Command, observer crabnode.ProgressObserver, extra ...options.Option) (*crabnode.Manager, error) {
	opts, err := settingsOptions(cmd)
	if err != nil {
		return nil, err
	}

	return crabnode.New(node.New, observer, append(opts, extra...)...)
}
