package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gofrs/flock"
	"github.com/hashicorp/go-multierror"
	"github.com/tonimelisma/vidispine-client/internal/logger"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

const (
	configDir  = ".vsclient"
	configFile = "config.json"

	// PathEnv overrides the location of the configuration file.
	PathEnv = "VSCLIENT_CONFIG_PATH"
)

// Environment variables read by ApplyEnv.
const (
	EnvHost     = "VIDISPINE_HOST"
	EnvPort     = "VIDISPINE_PORT"
	EnvUser     = "VIDISPINE_USER"
	EnvPassword = "VIDISPINE_PASSWORD"
	EnvRunAs    = "VIDISPINE_RUN_AS"
)

const (
	permConfigDir  = 0700
	permConfigFile = 0600
)

// Configuration holds the persisted settings of vsclient.
type Configuration struct {
	Server    vidispine.Config `json:"server"`
	Debug     bool             `json:"debug"`
	LogFormat logger.Format    `json:"logFormat,omitempty"`

	mu sync.RWMutex
}

// New returns a configuration with SDK defaults.
func New() *Configuration {
	return &Configuration{Server: vidispine.DefaultConfig(), LogFormat: logger.FormatText}
}

// Path returns the configuration file location.
func Path() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir, configFile), nil
}

// Save persists the configuration to disk, readable only by the owner.
func (c *Configuration) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	jsonData, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling config to JSON: %w", err)
	}

	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), permConfigDir); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("could not acquire config lock: %w", err)
	}
	if !locked {
		return errors.New("could not acquire config lock, another vsclient may be saving")
	}
	defer lock.Unlock()

	if err := os.WriteFile(path, jsonData, permConfigFile); err != nil {
		return fmt.Errorf("writing configuration file: %w", err)
	}
	return nil
}

// Load reads the configuration file. Fields missing from the file keep their
// defaults.
func Load() (*Configuration, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling json from %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrCreate loads the configuration file, or returns defaults if it does not exist.
func LoadOrCreate() (*Configuration, error) {
	cfg, err := Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides connection settings from the environment. getenv is
// usually os.Getenv.
func (c *Configuration) ApplyEnv(getenv func(string) string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v := getenv(EnvHost); v != "" {
		c.Server.Host = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q is not a port number: %w", EnvPort, v, err)
		}
		c.Server.Port = port
	}
	if v := getenv(EnvUser); v != "" {
		c.Server.User = v
	}
	if v := getenv(EnvPassword); v != "" {
		c.Server.Password = v
	}
	if v := getenv(EnvRunAs); v != "" {
		c.Server.RunAs = v
	}
	return nil
}

// Snapshot returns a copy of the configuration.
func (c *Configuration) Snapshot() *Configuration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Configuration{Server: c.Server, Debug: c.Debug, LogFormat: c.LogFormat}
}

// Validate reports every problem with the configuration at once, including
// missing credentials.
func (c *Configuration) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := c.settingsErrors()
	if c.Server.User == "" {
		result = multierror.Append(result, errors.New("user is empty"))
	}
	return result.ErrorOrNil()
}

// ValidateSettings is Validate without the credential checks, for
// configurations that are still being filled in.
func (c *Configuration) ValidateSettings() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settingsErrors().ErrorOrNil()
}

func (c *Configuration) settingsErrors() *multierror.Error {
	var result *multierror.Error
	s := c.Server
	if s.Host == "" {
		result = multierror.Append(result, errors.New("server host is empty"))
	}
	if s.Port < 1 || s.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("server port %d is out of range", s.Port))
	}
	if s.RetryAttempts < 0 {
		result = multierror.Append(result, fmt.Errorf("retry attempts %d is negative", s.RetryAttempts))
	}
	if s.RetryDelay < 0 {
		result = multierror.Append(result, fmt.Errorf("retry delay %s is negative", s.RetryDelay))
	}
	if s.MaxGatewayRetries < 0 {
		result = multierror.Append(result, fmt.Errorf("max gateway retries %d is negative", s.MaxGatewayRetries))
	}
	if s.PageSize < 0 {
		result = multierror.Append(result, fmt.Errorf("page size %d is negative", s.PageSize))
	}
	if s.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("timeout %s is negative", s.Timeout))
	}
	switch c.LogFormat {
	case "", logger.FormatText, logger.FormatJSON:
	default:
		result = multierror.Append(result, fmt.Errorf("log format %q must be text or json", c.LogFormat))
	}
	return result
}
