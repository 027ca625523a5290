package config

import "time"

const (
	defaultServerHost     = "0.0.0.0"
	defaultPort           = 25545
	defaultChunkSize      = 100_000
	defaultClientHost     = "localhost"
	defaultPayloadSize    = 1_000_000_000
	defaultSampleInterval = 50 * time.Millisecond
	defaultTimeout        = 60 * time.Second
	defaultKATimeout      = 90 * time.Second
	defaultRefresh        = 100 * time.Millisecond
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server: &ServerConfig{
			Host:      defaultServerHost,
			Port:      defaultPort,
			ChunkSize: defaultChunkSize,
		},
		Client: &ClientConfig{
			Host:           defaultClientHost,
			Port:           defaultPort,
			Size:           defaultPayloadSize,
			SampleInterval: defaultSampleInterval,
			Timeout:        defaultTimeout,
			KATimeout:      defaultKATimeout,
			Refresh:        defaultRefresh,
		},
	}
}
