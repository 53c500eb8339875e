package protocol

import (
	"context"

	"github.com/linka-aq/linka-proxy/types"
)

// Config is any unmarshal target that can validate itself after decoding.
type Config interface {
	Validate() error
}

// Connector is the source side of the proxy. One connector instance serves
// one command invocation; Setup must succeed before any other call.
type Connector interface {
	// GetConfigRef returns the struct the CLI decodes --config into
	GetConfigRef() Config
	// Spec returns a populated example of the connector config
	Spec() any
	// Setup establishes and verifies the source connection
	Setup(ctx context.Context) error
	// Check runs the connectivity probe for the check command
	Check(ctx context.Context) error
	// Type returns the connector identifier, e.g. FIUNA
	Type() string
	// Stream describes the table this connector reads
	Stream() *types.Stream
	// Discover inspects the source and returns the readable streams
	Discover(ctx context.Context) ([]*types.Stream, error)
	// FetchIncremental returns rows whose cursor value exceeds since,
	// oldest first, at most limit of them
	FetchIncremental(ctx context.Context, since, limit int64) (*types.Batch, error)
	Close() error
}
