package protocol

import (
	"context"
	"time"

	"github.com/linka-aq/linka-proxy/constants"
	"github.com/linka-aq/linka-proxy/destination"
	"github.com/linka-aq/linka-proxy/state"
	"github.com/linka-aq/linka-proxy/stats"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils"
	"github.com/linka-aq/linka-proxy/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "sync command",
	Long:  `Sync runs one incremental pull: fetch the rows past the committed cursor, deliver them as a single batch, then advance the cursor`,
	Example: `
// Explicit configs:
linka-proxy sync --config path/to/config.json --destination path/to/destination.json

// With the deployment's environment variables set, no arguments are needed:
linka-proxy sync
`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath != "not-set" {
			if err := utils.UnmarshalFile(configPath, connector.GetConfigRef(), true); err != nil {
				return types.WrapError(types.KindConfig, "failed to read source config: %s", err)
			}
		} else if envConfig := sourceConfigFromEnv(); envConfig != nil {
			if err := utils.Unmarshal(envConfig, connector.GetConfigRef()); err != nil {
				return types.WrapError(types.KindConfig, "failed to read source config from environment: %s", err)
			}
		} else {
			return types.WrapError(types.KindConfig, "no source config provided: pass --config or set %s_FIUNA_HOST", constants.EnvPrefix)
		}
		if err := connector.GetConfigRef().Validate(); err != nil {
			return types.WrapError(types.KindConfig, "failed to validate source config: %s", err)
		}

		if destinationConfigPath != "not-set" {
			destinationConfig = &types.WriterConfig{}
			if err := utils.UnmarshalFile(destinationConfigPath, destinationConfig, true); err != nil {
				return types.WrapError(types.KindConfig, "failed to read destination config: %s", err)
			}
		} else if envConfig := destinationConfigFromEnv(); envConfig != nil {
			destinationConfig = envConfig
		} else {
			return types.WrapError(types.KindConfig, "no destination config provided: pass --destination or set %s_SERVER_ENDPOINT", constants.EnvPrefix)
		}

		if archiveConfigPath != "not-set" {
			archiveConfig = &types.WriterConfig{}
			if err := utils.UnmarshalFile(archiveConfigPath, archiveConfig, true); err != nil {
				return types.WrapError(types.KindConfig, "failed to read archive config: %s", err)
			}
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
			defer cancel()
		}

		syncID := utils.ULID()
		store := state.NewStore(viper.GetString(constants.StatePath))
		configHash := stats.ComputeConfigHash(connector.GetConfigRef(), destinationConfig)

		summary, err := RunSync(ctx, connector, destinationConfig, archiveConfig, store, batchSize, syncID)
		stats.TrackSyncCompleted(configHash, summary, err)
		if err != nil {
			return err
		}

		logger.Info(types.Message{
			Type:  types.StateMessage,
			State: &types.StateRow{Cursor: summary.Cursor},
		})
		return nil
	},
}

// RunSync drives one complete incremental run: load the committed cursor,
// fetch the rows past it, deliver them as one batch, then commit the new
// cursor. The cursor file is only written after delivery is confirmed, so a
// failed run leaves it untouched and the next run refetches the same rows.
func RunSync(ctx context.Context, connector Connector, destConfig, archConfig *types.WriterConfig, store *state.Store, fetchLimit int64, syncID string) (*types.SyncSummary, error) {
	cursor, err := store.Load()
	if err != nil {
		return nil, types.WrapError(types.KindConfig, "failed to load cursor from %s: %s", store.Path(), err)
	}
	logger.Infof("starting sync[%s] from cursor %d", syncID, cursor)

	if err := connector.Setup(ctx); err != nil {
		return nil, types.WrapError(types.KindTransientSource, "failed to connect source: %s", err)
	}

	if _, err := InitializePersister(ctx, store.Path()); err != nil {
		return nil, types.WrapError(types.KindConfig, "failed to initialize artifact persistence: %s", err)
	}

	batch, err := connector.FetchIncremental(ctx, cursor, fetchLimit)
	if err != nil {
		return nil, types.WrapError(types.KindTransientSource, "failed to fetch batch: %s", err)
	}

	summary := &types.SyncSummary{
		PreviousCursor: cursor,
		Cursor:         cursor,
		RowsFetched:    batch.Size(),
		RowsDropped:    batch.Dropped,
		RowsPushed:     int64(len(batch.Records)),
	}

	if batch.Size() == 0 {
		logger.Infof("sync[%s] up to date, no rows past cursor %d", syncID, cursor)
		return summary, nil
	}

	if len(batch.Records) > 0 {
		writer, err := destination.NewWriter(destConfig)
		if err != nil {
			return summary, types.WrapError(types.KindConfig, "failed to create destination writer: %s", err)
		}
		if err := writer.Setup(connector.Stream(), destination.NewOptions(destination.WithIdentifier(syncID))); err != nil {
			return summary, types.WrapError(types.KindConfig, "failed to setup destination writer: %s", err)
		}
		if err := writer.Write(ctx, batch.Records); err != nil {
			return summary, types.WrapError(types.KindTransientSink, "failed to deliver batch: %s", err)
		}
		if err := writer.Close(ctx); err != nil {
			return summary, types.WrapError(types.KindTransientSink, "failed to finalize delivery: %s", err)
		}
		logger.Infof("sync[%s] delivered %d records", syncID, len(batch.Records))
	} else {
		// every fetched row was dropped by cleanup; nothing to send, but the
		// cursor still advances so the ignored backlog is not refetched forever
		logger.Infof("sync[%s] cleanup dropped all %d fetched rows, nothing to deliver", syncID, batch.Dropped)
	}

	if archConfig != nil {
		archiveBatch(ctx, archConfig, connector.Stream(), batch.Records, syncID)
	}

	if err := store.Commit(batch.Last); err != nil {
		return summary, types.WrapError(types.KindCursorWrite, "batch delivered but cursor commit failed: %s", err)
	}
	summary.Cursor = batch.Last

	logger.Infof("sync[%s] advanced cursor from %d to %d", syncID, cursor, batch.Last)
	return summary, nil
}

// archiveBatch writes delivered records to the archive writer. Failures are
// logged only; delivery already happened and the cursor commit must proceed.
func archiveBatch(ctx context.Context, config *types.WriterConfig, stream *types.Stream, records []types.Measurement, syncID string) {
	if len(records) == 0 {
		return
	}

	err := func() error {
		writer, err := destination.NewWriter(config)
		if err != nil {
			return err
		}
		if err := writer.Setup(stream, destination.NewOptions(destination.WithIdentifier(syncID))); err != nil {
			return err
		}
		if err := writer.Write(ctx, records); err != nil {
			return err
		}
		return writer.Close(ctx)
	}()
	if err != nil {
		logger.Warnf("archive write failed, continuing: %s", err)
	}
}
