package options

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File settings as stored in a YAML config file. Unset fields keep their
// default value
type File struct {
	DataDir         string   `yaml:"data_dir,omitempty"`
	StorageQuota    *uint64  `yaml:"storage_quota,omitempty"`
	MaxPeers        *uint32  `yaml:"max_peers,omitempty"`
	DiscoveryPort   *uint16  `yaml:"discovery_port,omitempty"`
	LogLevel        string   `yaml:"log_level,omitempty"`
	AutoConnect     *bool    `yaml:"auto_connect,omitempty"`
	RepoKind        string   `yaml:"repo_kind,omitempty"`
	BootstrapPeers  []string `yaml:"bootstrap_peers,omitempty"`
	SwarmKeyPath    string   `yaml:"swarm_key_path,omitempty"`
	RefreshInterval string   `yaml:"refresh_interval,omitempty"`
	GCInterval      string   `yaml:"gc_interval,omitempty"`
}

// LoadFile reads the YAML config file at path
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return ParseFile(data)
}

// ParseFile decodes a YAML config document
func ParseFile(data []byte) (*File, error) {
	file := &File{}
	if err := yaml.Unmarshal(data, file); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return file, nil
}

// Options converts the file into options, in field order
func (f *File) Options() ([]Option, error) {
	opts := []Option{}

	if f.DataDir != "" {
		opts = append(opts, DataDir(f.DataDir))
	}
	if f.StorageQuota != nil {
		opts = append(opts, StorageQuota(*f.StorageQuota))
	}
	if f.MaxPeers != nil {
		opts = append(opts, MaxPeers(*f.MaxPeers))
	}
	if f.DiscoveryPort != nil {
		opts = append(opts, DiscoveryPort(*f.DiscoveryPort))
	}
	if f.LogLevel != "" {
		opts = append(opts, LogLevel(f.LogLevel))
	}
	if f.AutoConnect != nil {
		opts = append(opts, AutoConnect(*f.AutoConnect))
	}
	if f.RepoKind != "" {
		opts = append(opts, RepoKind(f.RepoKind))
	}
	if len(f.BootstrapPeers) > 0 {
		opts = append(opts, BootstrapPeers(f.BootstrapPeers))
	}
	if f.SwarmKeyPath != "" {
		opts = append(opts, SwarmKeyPath(f.SwarmKeyPath))
	}

	if f.RefreshInterval != "" {
		interval, err := time.ParseDuration(f.RefreshInterval)
		if err != nil {
			return nil, fmt.Errorf("refresh_interval: %w", err)
		}
		opts = append(opts, RefreshInterval(interval))
	}
	if f.GCInterval != "" {
		interval, err := time.ParseDuration(f.GCInterval)
		if err != nil {
			return nil, fmt.Errorf("gc_interval: %w", err)
		}
		opts = append(opts, GCInterval(interval))
	}

	return opts, nil
}

// LoadFileOptional returns the options of the file at path. An empty path or
// a missing file yields no options
func LoadFileOptional(path string) ([]Option, error) {
	if path == "" {
		return nil, nil
	}

	file, err := LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	return file.Options()
}
