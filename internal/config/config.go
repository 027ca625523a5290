package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const configDirName = "speedtest"
const configFileName = "config.yaml"

// Config holds the configuration options for both subcommands.
type Config struct {
	Server *ServerConfig `yaml:"server,omitempty"`
	Client *ClientConfig `yaml:"client,omitempty"`
}

// ServerConfig configures the payload generator.
type ServerConfig struct {
	Host      string `yaml:"host,omitempty"`
	Port      int    `yaml:"port,omitempty"`
	ChunkSize int    `yaml:"chunkSize,omitempty"`
}

// ClientConfig configures the measuring side.
type ClientConfig struct {
	Host           string            `yaml:"host,omitempty"`
	Port           int               `yaml:"port,omitempty"`
	Size           uint64            `yaml:"size,omitempty"`
	SampleInterval time.Duration     `yaml:"sampleInterval,omitempty"`
	Timeout        time.Duration     `yaml:"timeout,omitempty"`
	KATimeout      time.Duration     `yaml:"keepAliveTimeout,omitempty"`
	Refresh        time.Duration     `yaml:"refresh,omitempty"`
	UserAgent      string            `yaml:"userAgent,omitempty"`
	Proxy          string            `yaml:"proxy,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	LargeBuffers   bool              `yaml:"largeBuffers,omitempty"`
}

// DefaultPath is where the config file is looked up when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, configDirName, configFileName)
}

// Load reads the configuration file at path (DefaultPath when empty) and fills
// every unset field with its default. A missing or empty file yields the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	defaults := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &defaults, nil
		}
		return nil, fmt.Errorf("error reading config: %w", err)
	}
	if len(b) == 0 {
		return &defaults, nil
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	cfg.Server = mergeServer(cfg.Server, defaults.Server)
	cfg.Client = mergeClient(cfg.Client, defaults.Client)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Client.Port <= 0 || c.Client.Port > 65535 {
		return fmt.Errorf("invalid client port %d", c.Client.Port)
	}
	if c.Server.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk size %d", c.Server.ChunkSize)
	}
	if c.Client.SampleInterval < 0 {
		return fmt.Errorf("invalid sample interval %s", c.Client.SampleInterval)
	}
	return nil
}

// ListenAddr is the generator's listen address.
func (s *ServerConfig) ListenAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// EndpointURL is the generator URL the client downloads from.
func (c *ClientConfig) EndpointURL() string {
	return fmt.Sprintf("http://%s/gen/%d", net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Size)
}

func mergeServer(got, def *ServerConfig) *ServerConfig {
	if got == nil {
		cp := *def
		return &cp
	}
	got.Host = zeroOr(got.Host, def.Host)
	got.Port = zeroOr(got.Port, def.Port)
	got.ChunkSize = zeroOr(got.ChunkSize, def.ChunkSize)
	return got
}

func mergeClient(got, def *ClientConfig) *ClientConfig {
	if got == nil {
		cp := *def
		return &cp
	}
	got.Host = zeroOr(got.Host, def.Host)
	got.Port = zeroOr(got.Port, def.Port)
	got.Size = zeroOr(got.Size, def.Size)
	got.SampleInterval = zeroOr(got.SampleInterval, def.SampleInterval)
	got.Timeout = zeroOr(got.Timeout, def.Timeout)
	got.KATimeout = zeroOr(got.KATimeout, def.KATimeout)
	got.Refresh = zeroOr(got.Refresh, def.Refresh)
	return got
}

func zeroOr[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
