package linka

import (
	"fmt"
	"net/url"

	"github.com/linka-aq/linka-proxy/utils"
)

// Config holds the ingest endpoint credentials for the measurement server
type Config struct {
	Endpoint       string `json:"endpoint"`
	APIKey         string `json:"api_key"`
	RequestTimeout int    `json:"request_timeout,omitempty"` // seconds
}

// Validate checks the configuration for any missing or invalid fields
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	parsed, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse endpoint: %s", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("endpoint must be an http or https URL: %s", c.Endpoint)
	}

	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}

	// Default request timeout
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30
	}

	return utils.Validate(c)
}
