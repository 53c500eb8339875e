package destination

import (
	"fmt"

	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils"
)

type (
	NewFunc func() Writer

	Options struct {
		Identifier string
	}

	WriterOption func(opt *Options)
)

var RegisteredWriters = map[types.AdapterType]NewFunc{}

func WithIdentifier(identifier string) WriterOption {
	return func(opt *Options) {
		opt.Identifier = identifier
	}
}

// NewOptions folds the passed options into a ready Options value
func NewOptions(options ...WriterOption) *Options {
	opts := &Options{}
	for _, one := range options {
		one(opts)
	}
	return opts
}

// NewWriter instantiates the configured writer and loads its config.
// Connectivity is not probed here; callers decide whether to Check.
func NewWriter(config *types.WriterConfig) (Writer, error) {
	newfunc, found := RegisteredWriters[config.Type]
	if !found {
		return nil, fmt.Errorf("invalid destination type has been passed [%s]", config.Type)
	}

	adapter := newfunc()
	if err := utils.Unmarshal(config.WriterConfig, adapter.GetConfigRef()); err != nil {
		return nil, err
	}

	return adapter, nil
}
