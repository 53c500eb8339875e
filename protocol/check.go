/*
 * Copyright 2025 Linka AQ
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

import (
	"fmt"

	"github.com/linka-aq/linka-proxy/destination"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils"
	"github.com/linka-aq/linka-proxy/utils/logger"
	"github.com/spf13/cobra"
)

var (
	checkSource      bool
	checkDestination bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "check command",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath != "not-set" {
			if err := utils.UnmarshalFile(configPath, connector.GetConfigRef(), true); err != nil {
				return err
			}
			checkSource = true
		} else if envConfig := sourceConfigFromEnv(); envConfig != nil {
			if err := utils.Unmarshal(envConfig, connector.GetConfigRef()); err != nil {
				return err
			}
			checkSource = true
		}

		if destinationConfigPath != "not-set" {
			destinationConfig = &types.WriterConfig{}
			if err := utils.UnmarshalFile(destinationConfigPath, destinationConfig, true); err != nil {
				return err
			}
			checkDestination = true
		} else if envConfig := destinationConfigFromEnv(); envConfig != nil {
			destinationConfig = envConfig
			checkDestination = true
		}

		if !checkSource && !checkDestination {
			return fmt.Errorf("no connector config or destination config provided")
		}

		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		probeSource := func() error {
			return connector.Check(cmd.Context())
		}
		probeDestination := func() error {
			writer, err := destination.NewWriter(destinationConfig)
			if err != nil {
				return err
			}
			return writer.Check(cmd.Context())
		}

		err := func() error {
			// both sides given, probe them in parallel
			if checkSource && checkDestination {
				return utils.ErrExec(
					utils.ErrExecFormat("source check failed: %s", probeSource),
					utils.ErrExecFormat("destination check failed: %s", probeDestination),
				)
			}

			if checkDestination {
				return probeDestination()
			}

			return probeSource()
		}()

		message := types.Message{
			Type: types.ConnectionStatusMessage,
			ConnectionStatus: &types.StatusRow{
				Status: types.ConnectionSucceed,
			},
		}
		if err != nil {
			message.ConnectionStatus.Message = err.Error()
			message.ConnectionStatus.Status = types.ConnectionFailed
		}
		logger.Info(message)
	},
}
