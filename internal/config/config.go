// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/getsops/sops/v3/decrypt"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "gridgov.config"

const (
	DefaultStorage         = "sqlite"
	DefaultShutdownTimeout = "30s"
	DefaultMetricsPort     = 12799
	DefaultApiPort         = 9090
	DefaultSlotLength      = time.Second

	envPrefix = "gridgov"
)

var ErrInvalidConfig = errors.New("invalid config")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DatabasePath    string      `yaml:"databasePath"    split_words:"true"`
	DatabaseDsn     string      `yaml:"databaseDsn"     split_words:"true"`
	Storage         string      `yaml:"storage"`
	Admin           string      `yaml:"admin"`
	MinQuorum       string      `yaml:"minQuorum"       split_words:"true"`
	BindAddr        string      `yaml:"bindAddr"        split_words:"true"`
	ShutdownTimeout string      `yaml:"shutdownTimeout" split_words:"true"`
	Token           TokenConfig `yaml:"token"`
	Clock           ClockConfig `yaml:"clock"`
	VotingPeriod    uint64      `yaml:"votingPeriod"    split_words:"true"`
	MetricsPort     uint        `yaml:"metricsPort"     split_words:"true"`
	ApiPort         uint        `yaml:"apiPort"         split_words:"true"`
	TlsCertFilePath string      `yaml:"tlsCertFilePath" envconfig:"TLS_CERT_FILE_PATH"`
	TlsKeyFilePath  string      `yaml:"tlsKeyFilePath"  envconfig:"TLS_KEY_FILE_PATH"`
	Tracing         bool        `yaml:"tracing"`
	TracingStdout   bool        `yaml:"tracingStdout"   split_words:"true"`
}

type TokenConfig struct {
	MaxSupply string `yaml:"maxSupply" split_words:"true"`
}

type ClockConfig struct {
	// SystemStart is the RFC3339 time at which the clock reports StartHeight
	SystemStart string        `yaml:"systemStart" split_words:"true"`
	SlotLength  time.Duration `yaml:"slotLength"  split_words:"true"`
	StartHeight uint64        `yaml:"startHeight" split_words:"true"`
}

// DefaultConfig returns a config populated with default values
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:    ".gridgov",
		Storage:         DefaultStorage,
		MinQuorum:       "1000000",
		BindAddr:        "0.0.0.0",
		ShutdownTimeout: DefaultShutdownTimeout,
		VotingPeriod:    1440,
		MetricsPort:     DefaultMetricsPort,
		ApiPort:         DefaultApiPort,
		Token: TokenConfig{
			MaxSupply: "1000000000",
		},
		Clock: ClockConfig{
			SlotLength: DefaultSlotLength,
		},
	}
}

var globalConfig = DefaultConfig()

// LoadConfig loads the config file, applies environment overrides and
// validates the result. With no config file given, ~/.gridgov/gridgov.yaml
// and /etc/gridgov/gridgov.yaml are tried in that order.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		// Check for config file in this path: ~/.gridgov/gridgov.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".gridgov", "gridgov.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		// Try to check for /etc/gridgov/gridgov.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/gridgov/gridgov.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		buf, err = decryptConfig(buf)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// decryptConfig returns the plaintext of a sops encrypted config file.
// Files without sops metadata are returned unchanged.
func decryptConfig(buf []byte) ([]byte, error) {
	var top map[string]any
	if err := yaml.Unmarshal(buf, &top); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if _, ok := top["sops"]; !ok {
		return buf, nil
	}
	ret, err := decrypt.Data(buf, "yaml")
	if err != nil {
		return nil, fmt.Errorf("error decrypting config file: %w", err)
	}
	return ret, nil
}

func GetConfig() *Config {
	return globalConfig
}

// Validate checks the config for values the host cannot run with
func (c *Config) Validate() error {
	switch c.Storage {
	case "memory", "sqlite", "badger", "postgres", "mysql":
	default:
		return fmt.Errorf(
			"%w: unknown storage %q (must be one of memory, sqlite, badger, postgres, mysql)",
			ErrInvalidConfig,
			c.Storage,
		)
	}
	if c.Admin == "" {
		return fmt.Errorf("%w: admin identity is required", ErrInvalidConfig)
	}
	if c.VotingPeriod == 0 {
		return fmt.Errorf("%w: voting period must be positive", ErrInvalidConfig)
	}
	if _, err := c.MinQuorumValue(); err != nil {
		return err
	}
	if _, err := c.MaxSupplyValue(); err != nil {
		return err
	}
	if c.Clock.SlotLength <= 0 {
		return fmt.Errorf("%w: clock slot length must be positive", ErrInvalidConfig)
	}
	if _, err := c.SystemStartTime(); err != nil {
		return err
	}
	if _, err := c.ShutdownTimeoutValue(); err != nil {
		return err
	}
	if (c.TlsCertFilePath == "") != (c.TlsKeyFilePath == "") {
		return fmt.Errorf(
			"%w: tlsCertFilePath and tlsKeyFilePath must be set together",
			ErrInvalidConfig,
		)
	}
	return nil
}

// MinQuorumValue returns the minimum quorum as an integer
func (c *Config) MinQuorumValue() (*big.Int, error) {
	return parseAmount("minQuorum", c.MinQuorum)
}

// MaxSupplyValue returns the token max supply as an integer
func (c *Config) MaxSupplyValue() (*big.Int, error) {
	return parseAmount("token.maxSupply", c.Token.MaxSupply)
}

// SystemStartTime returns the configured clock start. An empty value means
// the current time.
func (c *Config) SystemStartTime() (time.Time, error) {
	if c.Clock.SystemStart == "" {
		return time.Now(), nil
	}
	ret, err := time.Parse(time.RFC3339, c.Clock.SystemStart)
	if err != nil {
		return time.Time{}, fmt.Errorf(
			"%w: clock.systemStart: %w",
			ErrInvalidConfig,
			err,
		)
	}
	return ret, nil
}

// ShutdownTimeoutValue returns the graceful shutdown timeout
func (c *Config) ShutdownTimeoutValue() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return time.ParseDuration(DefaultShutdownTimeout)
	}
	ret, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("%w: shutdownTimeout: %w", ErrInvalidConfig, err)
	}
	return ret, nil
}

func parseAmount(name string, value string) (*big.Int, error) {
	ret, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf(
			"%w: %s must be a decimal integer, got %q",
			ErrInvalidConfig,
			name,
			value,
		)
	}
	if ret.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, name)
	}
	return ret, nil
}
