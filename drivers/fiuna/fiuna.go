package driver

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/ssh"

	"github.com/linka-aq/linka-proxy/constants"
	"github.com/linka-aq/linka-proxy/pkg/jdbc"
	"github.com/linka-aq/linka-proxy/protocol"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils"
	"github.com/linka-aq/linka-proxy/utils/logger"
)

const (
	pingTimeout  = 10 * time.Second
	discoverTime = 5 * time.Minute // maximum time allowed to discover the table schema
)

// Fiuna represents the MariaDB measurement database driver
type Fiuna struct {
	config    *Config
	client    *sqlx.DB
	sshClient *ssh.Client
	flavor    string
}

// GetConfigRef returns a reference to the configuration
func (f *Fiuna) GetConfigRef() protocol.Config {
	f.config = &Config{}
	return f.config
}

// Spec returns an example configuration
func (f *Fiuna) Spec() any {
	return Config{
		Host:        "localhost",
		Port:        3306,
		User:        "fiuna",
		Password:    "secret",
		Database:    "fiuna",
		Table:       "measurements",
		CursorField: constants.DefaultCursorField,
	}
}

// Setup establishes the database connection
func (f *Fiuna) Setup(ctx context.Context) error {
	err := f.config.Validate()
	if err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}

	if f.config.SSHConfig != nil {
		if err := f.setupTunnel(); err != nil {
			return fmt.Errorf("failed to establish ssh tunnel: %s", err)
		}
	}

	uri, err := f.config.URI()
	if err != nil {
		return fmt.Errorf("failed to build connection URI: %s", err)
	}
	// Open database connection
	client, err := sqlx.Open("mysql", uri)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %s", err)
	}
	// The measurement table carries columns the proxy does not map
	client = client.Unsafe()

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %s", err)
	}
	f.client = client

	flavor, major, minor, err := jdbc.MySQLVersion(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to detect server version: %s", err)
	}
	f.flavor = flavor
	logger.Infof("connected to %s %d.%d database[%s]", flavor, major, minor, f.config.Database)
	return nil
}

// setupTunnel opens the SSH connection and points the mysql driver at it.
// Dialer names are unique per setup so repeated connections never collide.
func (f *Fiuna) setupTunnel() error {
	sshClient, err := f.config.SSHConfig.SetupSSHConnection()
	if err != nil {
		return err
	}
	f.sshClient = sshClient

	networkName := "mysql_ssh_" + utils.ULID()
	mysql.RegisterDialContext(networkName, func(_ context.Context, addr string) (net.Conn, error) {
		return sshClient.Dial("tcp", addr)
	})
	f.config.tunnelNet = networkName
	return nil
}

// Check verifies the database connection
func (f *Fiuna) Check(ctx context.Context) error {
	return f.Setup(ctx)
}

// Type returns the source type
func (f *Fiuna) Type() string {
	return "FIUNA"
}

// Stream describes the one table this driver reads
func (f *Fiuna) Stream() *types.Stream {
	return types.NewStream(f.config.Table, f.config.Database).WithCursorField(f.config.CursorField)
}

// Discover reads the configured table's columns from information_schema
func (f *Fiuna) Discover(ctx context.Context) ([]*types.Stream, error) {
	logger.Infof("starting discover for database %s", f.config.Database)
	discoverCtx, cancel := context.WithTimeout(ctx, discoverTime)
	defer cancel()

	stream := f.Stream()
	rows, err := f.client.QueryContext(discoverCtx, jdbc.MySQLTableSchemaQuery(), f.config.Database, f.config.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column information: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var columnName, columnType, dataType, isNullable, columnKey string
		if err := rows.Scan(&columnName, &columnType, &dataType, &isNullable, &columnKey); err != nil {
			return nil, fmt.Errorf("failed to scan column: %s", err)
		}
		stream.Columns = append(stream.Columns, types.Column{
			Name:       columnName,
			Type:       dataType,
			Nullable:   strings.EqualFold("yes", isNullable),
			PrimaryKey: columnKey == "PRI",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %s", err)
	}
	if len(stream.Columns) == 0 {
		return nil, fmt.Errorf("table %s not found in database %s", f.config.Table, f.config.Database)
	}

	f.logTableStats(discoverCtx)

	return []*types.Stream{stream}, nil
}

// logTableStats reports the estimated table size, failures are informational only
func (f *Fiuna) logTableStats(ctx context.Context) {
	var rowCount, avgRowBytes sql.NullInt64
	err := f.client.QueryRowxContext(ctx, jdbc.MySQLTableRowStatsQuery(), f.config.Database, f.config.Table).
		Scan(&rowCount, &avgRowBytes)
	if err != nil {
		logger.Warnf("failed to read table stats: %s", err)
		return
	}
	logger.Infof("table %s holds an estimated %d rows, average row size %d bytes",
		f.config.Table, rowCount.Int64, avgRowBytes.Int64)
}

// Close tears down the connection pool and the tunnel behind it; both are
// attempted even when one fails
func (f *Fiuna) Close() error {
	return utils.ErrExecSequential(
		func() error {
			if f.client == nil {
				return nil
			}
			return f.client.Close()
		},
		func() error {
			if f.sshClient == nil {
				return nil
			}
			return f.sshClient.Close()
		},
	)
}
