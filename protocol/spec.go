package protocol

import (
	"fmt"
	"strings"

	"github.com/linka-aq/linka-proxy/destination"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils"
	"github.com/linka-aq/linka-proxy/utils/logger"
	"github.com/spf13/cobra"
)

// specCmd represents the spec command
var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "spec command",
	RunE: func(_ *cobra.Command, _ []string) error {
		var config any
		if destinationType == "not-set" {
			config = connector.Spec()
		} else {
			adapterType := types.AdapterType(strings.ToUpper(destinationType))
			newFunc, found := destination.RegisteredWriters[adapterType]
			if !found {
				return fmt.Errorf("invalid destination type has been passed [%s]", adapterType)
			}
			config = newFunc().Spec()
		}

		specMap := make(map[string]interface{})
		if err := utils.Unmarshal(config, &specMap); err != nil {
			return fmt.Errorf("failed to serialize example config: %s", err)
		}

		logger.Info(types.Message{
			Type: types.SpecMessage,
			Spec: specMap,
		})

		if noSave {
			return nil
		}
		return logger.FileLogger(specMap, "spec", ".json")
	},
}
