package protocol

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/linka-aq/linka-proxy/constants"
	"github.com/linka-aq/linka-proxy/stats"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils"
	"github.com/linka-aq/linka-proxy/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath            string
	destinationConfigPath string
	archiveConfigPath     string
	statePath             string
	destinationType       string
	batchSize             int64
	noSave                bool
	encryptionKey         string
	timeout               int64 // timeout in seconds
	destinationConfig     *types.WriterConfig
	archiveConfig         *types.WriterConfig

	commands  = []*cobra.Command{}
	connector Connector
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "linka-proxy",
	Short: "root command",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// set global variables

		viper.SetEnvPrefix(constants.EnvPrefix)
		viper.AutomaticEnv()

		viper.SetDefault(constants.ConfigFolder, os.TempDir())
		viper.SetDefault(constants.StreamsPath, filepath.Join(os.TempDir(), "streams.json"))
		if !noSave && (configPath != "not-set" || destinationConfigPath != "not-set") {
			configFolder := utils.Ternary(configPath == "not-set", filepath.Dir(destinationConfigPath), filepath.Dir(configPath)).(string)
			viper.Set(constants.ConfigFolder, configFolder)
			viper.Set(constants.StreamsPath, filepath.Join(configFolder, "streams.json"))
		}

		// cursor file location: flag first, then environment, then the
		// working directory default
		resolvedStatePath := utils.Ternary(statePath != "", statePath, viper.GetString("FIUNA_LAST_PATH")).(string)
		viper.Set(constants.StatePath, utils.Ternary(resolvedStatePath != "", resolvedStatePath, constants.DefaultCursorPath).(string))

		if encryptionKey != "" {
			viper.Set(constants.EncryptionKey, encryptionKey)
		}

		// logger uses CONFIG_FOLDER
		logger.Init()
		stats.Init()

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'linka-proxy --help' to display usage guide", args[0])
		}

		return nil
	},
}

// CreateRootCommand registers the subcommands and binds the connector they
// operate on.
func CreateRootCommand(c Connector) *cobra.Command {
	RootCmd.AddCommand(commands...)
	connector = c

	return RootCmd
}

// sourceConfigFromEnv rebuilds the connector config from the deployment's
// documented environment variables when no --config file was given. Returns
// nil when the environment carries no source settings.
func sourceConfigFromEnv() map[string]any {
	host := viper.GetString("FIUNA_HOST")
	if host == "" {
		return nil
	}
	return map[string]any{
		"host":     host,
		"user":     viper.GetString("FIUNA_USER"),
		"password": viper.GetString("FIUNA_PASSWORD"),
		"database": viper.GetString("FIUNA_DATABASE"),
		"table":    viper.GetString("FIUNA_TABLE"),
	}
}

// destinationConfigFromEnv rebuilds the delivery writer config from the
// environment when no --destination file was given.
func destinationConfigFromEnv() *types.WriterConfig {
	endpoint := viper.GetString("SERVER_ENDPOINT")
	if endpoint == "" {
		return nil
	}
	return &types.WriterConfig{
		Type: types.Linka,
		WriterConfig: map[string]any{
			"endpoint": endpoint,
			"api_key":  viper.GetString("SERVER_API_KEY"),
		},
	}
}

func init() {
	commands = append(commands, specCmd, checkCmd, discoverCmd, syncCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", "not-set", "Config for connector")
	RootCmd.PersistentFlags().StringVarP(&destinationConfigPath, "destination", "", "not-set", "Destination config for connector")
	RootCmd.PersistentFlags().StringVarP(&archiveConfigPath, "archive", "", "not-set", "(Optional) Archive writer config for sync")
	RootCmd.PersistentFlags().StringVarP(&destinationType, "destination-type", "", "not-set", "Destination type for spec")
	RootCmd.PersistentFlags().StringVarP(&statePath, "state", "", "", "Path of the cursor state file")
	RootCmd.PersistentFlags().Int64VarP(&batchSize, "batch-size", "", constants.DefaultBatchSize, "(Optional) Max rows fetched from the source per run")
	RootCmd.PersistentFlags().BoolVarP(&noSave, "no-save", "", false, "(Optional) Flag to skip logging artifacts in file")
	RootCmd.PersistentFlags().StringVarP(&encryptionKey, "encryption-key", "", "", "(Optional) Decryption key. Provide the ARN of a KMS key, a UUID, or a custom string based on your encryption configuration.")
	RootCmd.PersistentFlags().Int64VarP(&timeout, "timeout", "", -1, "(Optional) Timeout to override default timeouts (in seconds)")
	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
