package jdbc

import (
	"strings"
	"testing"

	"github.com/linka-aq/linka-proxy/types"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		expected   string
	}{
		{
			name:       "plain identifier",
			identifier: "measurements",
			expected:   "`measurements`",
		},
		{
			name:       "identifier with embedded backtick",
			identifier: "weird`name",
			expected:   "`weird``name`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quoted := QuoteIdentifier(tt.identifier)
			if quoted != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, quoted)
			}
		})
	}
}

func TestBuildIncrementalQuery(t *testing.T) {
	stream := types.NewStream("measurements", "fiuna")
	query := BuildIncrementalQuery(stream)

	expected := "SELECT * FROM `fiuna`.`measurements` WHERE `id` > ? ORDER BY `id` ASC LIMIT ?"
	if query != expected {
		t.Errorf("expected %q, got %q", expected, query)
	}

	stream = stream.WithCursorField("recorded")
	query = BuildIncrementalQuery(stream)
	if !strings.Contains(query, "WHERE `recorded` > ?") {
		t.Errorf("expected cursor condition on `recorded`, got %q", query)
	}
	if !strings.Contains(query, "ORDER BY `recorded` ASC") {
		t.Errorf("expected ordering on `recorded`, got %q", query)
	}
}

func TestMySQLFlavorDetection(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{
			name:     "MySQL 5.7",
			version:  "5.7.32-0ubuntu0.18.04.1",
			expected: "MySQL",
		},
		{
			name:     "MySQL 8.0",
			version:  "8.0.23",
			expected: "MySQL",
		},
		{
			name:     "MariaDB 10.5",
			version:  "10.5.8-MariaDB-1:10.5.8+maria~focal",
			expected: "MariaDB",
		},
		{
			name:     "MariaDB 11.0",
			version:  "11.0.1-MariaDB",
			expected: "MariaDB",
		},
		{
			name:     "Percona 8.0",
			version:  "8.0.23-14.1-percona-server-community",
			expected: "MySQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flavor := flavorFromVersion(tt.version)
			if flavor != tt.expected {
				t.Errorf("expected %s, got %s for version %s", tt.expected, flavor, tt.version)
			}
		})
	}
}
