package linka

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/linka-aq/linka-proxy/destination"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils/logger"
)

// Linka posts measurement batches to the ingest endpoint. Delivery is
// all-or-nothing, one request per batch, the server deduplicates resends.
type Linka struct {
	options *destination.Options
	config  *Config
	stream  *types.Stream
	client  *http.Client
}

func (l *Linka) GetConfigRef() destination.Config {
	l.config = &Config{}
	return l.config
}

// Spec returns an example configuration
func (l *Linka) Spec() any {
	return Config{
		Endpoint:       "https://ingest.example.com/measurements",
		APIKey:         "secret",
		RequestTimeout: 30,
	}
}

// Setup binds the writer to a stream and prepares the HTTP client
func (l *Linka) Setup(stream *types.Stream, options *destination.Options) error {
	if err := l.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}
	l.stream = stream
	l.options = options
	l.client = &http.Client{Timeout: time.Duration(l.config.RequestTimeout) * time.Second}
	return nil
}

// Write delivers the whole batch as one JSON array in a single request
func (l *Linka) Write(ctx context.Context, records []types.Measurement) error {
	if len(records) == 0 {
		return nil
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %s", err)
	}

	logger.Debugf("posting %d measurements to %s", len(records), l.config.Endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.config.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", l.config.APIKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("server rejected batch (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Check posts an empty array to verify reachability and credentials without
// ingesting anything
func (l *Linka) Check(ctx context.Context) error {
	if err := l.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}
	l.client = &http.Client{Timeout: time.Duration(l.config.RequestTimeout) * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.config.Endpoint, strings.NewReader("[]"))
	if err != nil {
		return fmt.Errorf("failed to build request: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", l.config.APIKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %s", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("server rejected the api key (status %d)", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Type returns the type of the writer
func (l *Linka) Type() string {
	return string(types.Linka)
}

func (l *Linka) Close(_ context.Context) error {
	if l.client != nil {
		l.client.CloseIdleConnections()
	}
	return nil
}

func init() {
	destination.RegisteredWriters[types.Linka] = func() destination.Writer {
		return new(Linka)
	}
}
