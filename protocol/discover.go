package protocol

import (
	"errors"
	"fmt"
	"time"

	"github.com/linka-aq/linka-proxy/stats"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils"
	"github.com/spf13/cobra"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "discover command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath != "not-set" {
			return utils.UnmarshalFile(configPath, connector.GetConfigRef(), true)
		}
		if envConfig := sourceConfigFromEnv(); envConfig != nil {
			return utils.Unmarshal(envConfig, connector.GetConfigRef())
		}

		return fmt.Errorf("--config not passed")
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		startTime := time.Now()
		var discoverError error
		var streamCount int
		defer func() {
			stats.TrackDiscoverCompleted(streamCount, time.Since(startTime), discoverError)
		}()

		if discoverError = connector.Setup(cmd.Context()); discoverError != nil {
			return discoverError
		}

		streams, err := connector.Discover(cmd.Context())
		if err != nil {
			discoverError = err
			return err
		}

		if len(streams) == 0 {
			discoverError = errors.New("no streams found in connector")
			return discoverError
		}
		streamCount = len(streams)

		types.LogCatalog(streams)
		return nil
	},
}
