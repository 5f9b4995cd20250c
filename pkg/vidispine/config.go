package vidispine

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds everything a Client needs to reach a Vidispine server.
type Config struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	HTTPS    bool   `json:"https"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	RunAs    string `json:"runAs,omitempty"`

	// RetryAttempts bounds the total number of attempts made for a request
	// answered with 503 or a malformed status line.
	RetryAttempts int           `json:"retryAttempts"`
	RetryDelay    time.Duration `json:"retryDelay"`

	// MaxGatewayRetries bounds consecutive 504 retries inside one send.
	// Zero keeps retrying for as long as the server keeps answering 504.
	MaxGatewayRetries int `json:"maxGatewayRetries,omitempty"`

	PageSize int           `json:"pageSize"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

// DefaultConfig returns a Config for localhost:8080 with the standard retry policy.
func DefaultConfig() Config {
	return Config{
		Host:          "localhost",
		Port:          DefaultPort,
		RetryAttempts: DefaultRetryAttempts,
		RetryDelay:    DefaultRetryDelay,
		PageSize:      DefaultPageSize,
		Timeout:       DefaultTimeout,
	}
}

// withDefaults fills zero-valued tuning fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = d.RetryAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	return c
}

// BaseURL returns scheme://host:port.
func (c Config) BaseURL() *url.URL {
	scheme := "http"
	if c.HTTPS {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: net.JoinHostPort(c.Host, strconv.Itoa(c.Port))}
}

// Credentials returns the authentication part of the config.
func (c Config) Credentials() Credentials {
	return Credentials{User: c.User, Password: c.Password, RunAs: c.RunAs}
}

// ParseServerURL fills Host, Port and HTTPS from a "{proto}://{server}[:port]"
// URL, as used by Portal-style configuration.
func (c *Config) ParseServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: parsing server url %q: %w", ErrInvalidData, raw, err)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: server url %q has no host", ErrInvalidData, raw)
	}
	switch u.Scheme {
	case "http":
		c.HTTPS = false
	case "https":
		c.HTTPS = true
	default:
		return fmt.Errorf("%w: server url %q must use http or https", ErrInvalidData, raw)
	}
	c.Host = u.Hostname()
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("%w: server url %q has invalid port: %w", ErrInvalidData, raw, err)
		}
		c.Port = port
	}
	return nil
}
