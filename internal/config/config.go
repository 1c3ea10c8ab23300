package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/eva-assistant/internal/domain"
)

const (
	RoutingActive = "active"
	RoutingOrigin = "origin"
)

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Session SessionConfig `yaml:"session"`

	// Agents built outside this service; merged after the built-ins.
	CustomAgents []domain.CustomAgentConfig `yaml:"custom_agents"`
}

// SessionConfig configures the assistant session.
type SessionConfig struct {
	ReplyDelay   time.Duration `yaml:"reply_delay"`
	ReplyRouting string        `yaml:"reply_routing"` // "active" or "origin"
	DefaultAgent string        `yaml:"default_agent"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:     "8080",
		LogLevel: "info",
		Session: SessionConfig{
			ReplyDelay:   time.Second,
			ReplyRouting: RoutingActive,
			DefaultAgent: "eva",
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads the optional YAML file at path (EVA_CONFIG when empty), then
// applies EVA_* env overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	path = getEnv("EVA_CONFIG", path)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("EVA_PORT", c.Port)
	c.LogLevel = getEnv("EVA_LOG_LEVEL", c.LogLevel)
	c.Session.ReplyRouting = getEnv("EVA_REPLY_ROUTING", c.Session.ReplyRouting)
	c.Session.DefaultAgent = getEnv("EVA_DEFAULT_AGENT", c.Session.DefaultAgent)

	if v := os.Getenv("EVA_REPLY_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EVA_REPLY_DELAY: %w", err)
		}
		c.Session.ReplyDelay = d
	}
	return nil
}

// Validate checks the fields the session can't run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port must be set"))
	}
	if c.Session.ReplyDelay < 0 {
		errs = append(errs, errors.New("session.reply_delay must not be negative"))
	}
	switch strings.ToLower(c.Session.ReplyRouting) {
	case RoutingActive, RoutingOrigin:
		c.Session.ReplyRouting = strings.ToLower(c.Session.ReplyRouting)
	default:
		errs = append(errs, fmt.Errorf("session.reply_routing must be %q or %q, got %q",
			RoutingActive, RoutingOrigin, c.Session.ReplyRouting))
	}
	for i, a := range c.CustomAgents {
		if a.ID == "" {
			errs = append(errs, fmt.Errorf("custom_agents[%d]: id is required", i))
		}
	}
	return errors.Join(errs...)
}
