package options

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const (
	// RepoBadger persistent repository backed by badger
	RepoBadger = "badger"

	// RepoMemory volatile in-memory repository
	RepoMemory = "memory"
)

// Settings init settings
type Settings struct {
	Context context.Context

	DataDir       string
	StorageQuota  uint64
	MaxPeers      uint32
	DiscoveryPort uint16
	LogLevel      string
	AutoConnect   bool

	RepoKind       string
	BootstrapPeers []string
	SwarmKeyPath   string

	RefreshInterval time.Duration
	GCInterval      time.Duration
}

// Option represents a single init option
type Option func(s *Settings) error

// DefaultDataDir is used when no data directory is configured
func DefaultDataDir() string {
	return filepath.Join(os.TempDir(), "crabnode", "data")
}

// SetDefaults set the default values
func (s *Settings) SetDefaults() error {
	s.Context = context.Background()

	s.DataDir = DefaultDataDir()
	s.StorageQuota = 1024 * 1024 * 1024
	s.MaxPeers = 50
	s.DiscoveryPort = 8089
	s.LogLevel = "info"
	s.AutoConnect = false

	s.RepoKind = RepoBadger
	s.BootstrapPeers = []string{}
	s.SwarmKeyPath = ""

	s.RefreshInterval = 30 * time.Second
	s.GCInterval = 1 * time.Hour

	return nil
}

// Validate checks the settings can be used to create a node
func (s *Settings) Validate() error {
	if s.DataDir == "" {
		return errors.New("data directory is required")
	}
	if s.StorageQuota == 0 {
		return errors.New("storage quota must be bigger than 0")
	}
	if s.MaxPeers == 0 {
		return errors.New("max peers must be bigger than 0")
	}
	if s.RepoKind != RepoBadger && s.RepoKind != RepoMemory {
		return errors.New("unknown repo kind: " + s.RepoKind)
	}
	if s.RefreshInterval < 0 || s.GCInterval < 0 {
		return errors.New("intervals must not be negative")
	}

	return nil
}

// Apply runs every option over s
func (s *Settings) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}

	return nil
}

// Context option
func Context(ctx context.Context) Option {
	return func(s *Settings) error {
		s.Context = ctx
		return nil
	}
}

// DataDir sets the repository location
func DataDir(dir string) Option {
	return func(s *Settings) error {
		s.DataDir = dir
		return nil
	}
}

// StorageQuota sets the maximum number of bytes the node may store
func StorageQuota(quota uint64) Option {
	return func(s *Settings) error {
		s.StorageQuota = quota
		return nil
	}
}

// MaxPeers option
func MaxPeers(max uint32) Option {
	return func(s *Settings) error {
		s.MaxPeers = max
		return nil
	}
}

// DiscoveryPort sets the port the node listens on
func DiscoveryPort(port uint16) Option {
	return func(s *Settings) error {
		s.DiscoveryPort = port
		return nil
	}
}

// LogLevel option. One of debug, info, warn, error
func LogLevel(level string) Option {
	return func(s *Settings) error {
		s.LogLevel = level
		return nil
	}
}

// AutoConnect connects as soon as the manager is created
func AutoConnect(auto bool) Option {
	return func(s *Settings) error {
		s.AutoConnect = auto
		return nil
	}
}

// RepoKind selects the repository datastore. See RepoBadger and RepoMemory
func RepoKind(kind string) Option {
	return func(s *Settings) error {
		s.RepoKind = kind
		return nil
	}
}

// BootstrapPeers option
func BootstrapPeers(peers []string) Option {
	return func(s *Settings) error {
		s.BootstrapPeers = peers
		return nil
	}
}

// BootstrapPeersAppend option
func BootstrapPeersAppend(peers []string) Option {
	return func(s *Settings) error {
		s.BootstrapPeers = append(s.BootstrapPeers, peers...)
		return nil
	}
}

// SwarmKeyPath joins the private network described by the key file
func SwarmKeyPath(path string) Option {
	return func(s *Settings) error {
		s.SwarmKeyPath = path
		return nil
	}
}

// RefreshInterval sets how often the network snapshot is refreshed. 0 disables
func RefreshInterval(interval time.Duration) Option {
	return func(s *Settings) error {
		s.RefreshInterval = interval
		return nil
	}
}

// GCInterval sets how often the node collects orphan blocks. 0 disables
func GCInterval(interval time.Duration) Option {
	return func(s *Settings) error {
		s.GCInterval = interval
		return nil
	}
}
