package linkaproxy

import (
	"os"

	"github.com/linka-aq/linka-proxy/protocol"
	"github.com/linka-aq/linka-proxy/utils/logger"
	"github.com/linka-aq/linka-proxy/utils/safego"

	_ "github.com/linka-aq/linka-proxy/destination/linka"   // registering delivery writer
	_ "github.com/linka-aq/linka-proxy/destination/parquet" // registering archive writer
)

// Run executes the CLI for the given connector. It exits the process: zero
// after a clean run, non-zero through the fatal log path on any error.
func Run(connector protocol.Connector) {
	defer safego.Recovery(true)

	// Execute the root command
	err := protocol.CreateRootCommand(connector).Execute()
	if err != nil {
		logger.Fatal(err)
	}

	os.Exit(0)
}
