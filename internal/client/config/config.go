package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the Character Studio CLI.
type Config struct {
	ServerEndpointAddr string `env:"SERVER_ADDRESS"`
	// AccessToken is a JWT issued for the user; see cmd/token.
	AccessToken string `env:"ACCESS_TOKEN"`
	// ReadyDelay is how long the watcher waits after a character becomes
	// ready before showing the result.
	ReadyDelay time.Duration `env:"READY_DELAY"`
	// RequestTimeout bounds unary calls. Image generation is slow, so keep
	// it generous.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.ReadyDelay = 1500 * time.Millisecond
	c.RequestTimeout = 2 * time.Minute
}

// LoadConfig constructs a Config from defaults, the environment, the JSON
// file named in args and the flags in args. Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, nil); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if cfg.ServerEndpointAddr == "" {
		return nil, fmt.Errorf("config: server address is empty")
	}
	return cfg, nil
}
