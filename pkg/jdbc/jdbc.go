package jdbc

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/linka-aq/linka-proxy/types"
)

// QuoteIdentifier returns the identifier quoted with backticks for MySQL
func QuoteIdentifier(identifier string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(identifier, "`", "``"))
}

// QuoteTable returns the properly quoted schema.table combination
func QuoteTable(schema, table string) string {
	return fmt.Sprintf("%s.%s", QuoteIdentifier(schema), QuoteIdentifier(table))
}

// BuildIncrementalQuery generates the bounded incremental scan for a stream:
// rows strictly after the cursor position, oldest first.
func BuildIncrementalQuery(stream *types.Stream) string {
	quotedCursor := QuoteIdentifier(stream.CursorField)
	quotedTable := QuoteTable(stream.Namespace, stream.Name)
	return fmt.Sprintf("SELECT * FROM %s WHERE %s > ? ORDER BY %s ASC LIMIT ?",
		quotedTable, quotedCursor, quotedCursor)
}

// MySQLTableSchemaQuery returns the query to fetch schema information for a table in MySQL
func MySQLTableSchemaQuery() string {
	return `
		SELECT
			COLUMN_NAME,
			COLUMN_TYPE,
			DATA_TYPE,
			IS_NULLABLE,
			COLUMN_KEY
		FROM
			INFORMATION_SCHEMA.COLUMNS
		WHERE
			TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY
			ORDINAL_POSITION
	`
}

// MySQLTableRowStatsQuery returns the query to fetch the estimated row count and average row size of a table in MySQL
func MySQLTableRowStatsQuery() string {
	return `
		SELECT TABLE_ROWS,
		CEIL(data_length / NULLIF(table_rows, 0)) AS avg_row_bytes
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?
	`
}

// MySQLVersion returns the version of the MySQL server
// It returns the flavor, major and minor version of the MySQL server
func MySQLVersion(ctx context.Context, client *sqlx.DB) (string, int, int, error) {
	var version string
	err := client.QueryRowContext(ctx, "SELECT @@version").Scan(&version)
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to get MySQL version: %s", err)
	}

	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return "", 0, 0, fmt.Errorf("invalid version format")
	}
	majorVersion, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid major version: %s", err)
	}

	minorVersion, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid minor version: %s", err)
	}

	return flavorFromVersion(version), majorVersion, minorVersion, nil
}

// flavorFromVersion tells MariaDB apart from MySQL compatible servers
func flavorFromVersion(version string) string {
	if strings.Contains(strings.ToUpper(version), "MARIADB") {
		return "MariaDB"
	}
	return "MySQL"
}

// MapScan scans the current row into dest, decoding driver []byte values
// into strings
func MapScan(rows *sqlx.Rows, dest types.Record) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	scanValues := make([]any, len(columns))
	for i := range scanValues {
		scanValues[i] = new(any) // Allocate pointers for scanning
	}

	if err := rows.Scan(scanValues...); err != nil {
		return err
	}

	for i, column := range columns {
		rawData := *(scanValues[i].(*any)) // Dereference pointer before storing
		if bytes, ok := rawData.([]byte); ok {
			dest[column] = string(bytes)
		} else {
			dest[column] = rawData
		}
	}

	return nil
}
