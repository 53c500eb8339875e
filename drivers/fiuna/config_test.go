package driver

import (
	"strings"
	"testing"

	"github.com/linka-aq/linka-proxy/utils"
)

func TestConfig_URI_WithJDBCParams(t *testing.T) {
	config := &Config{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		Table:    "measurements",
		JDBCURLParams: map[string]string{
			"charset":   "utf8mb4",
			"parseTime": "true",
			"loc":       "Local",
		},
	}

	uri, err := config.URI()
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}

	// Check that JDBC params are included in the URI
	if !strings.Contains(uri, "charset=utf8mb4") {
		t.Errorf("Expected charset parameter in URI, got: %s", uri)
	}
	if !strings.Contains(uri, "parseTime=true") {
		t.Errorf("Expected parseTime parameter in URI, got: %s", uri)
	}
	if !strings.Contains(uri, "loc=Local") {
		t.Errorf("Expected loc parameter in URI, got: %s", uri)
	}
}

func TestConfig_URI_WithSSLDisabled(t *testing.T) {
	config := &Config{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		Table:    "measurements",
		SSLConfiguration: &utils.SSLConfig{
			Mode: utils.SSLModeDisable,
		},
	}

	uri, err := config.URI()
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}

	// Check that TLS is disabled
	if !strings.Contains(uri, "tls=false") {
		t.Errorf("Expected tls=false in URI, got: %s", uri)
	}
}

func TestConfig_URI_WithSSLRequired(t *testing.T) {
	config := &Config{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		Table:    "measurements",
		SSLConfiguration: &utils.SSLConfig{
			Mode: utils.SSLModeRequire,
		},
	}

	uri, err := config.URI()
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}

	// Require mode registers a uniquely named TLS config
	if !strings.Contains(uri, "tls=mysql_") {
		t.Errorf("Expected registered TLS config in URI, got: %s", uri)
	}
}

func TestConfig_URI_DefaultHostAndPort(t *testing.T) {
	config := &Config{
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		Table:    "measurements",
	}

	uri, err := config.URI()
	if err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}

	if !strings.Contains(uri, "localhost:3306") {
		t.Errorf("Expected default host and port in URI, got: %s", uri)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		expectErr bool
	}{
		{
			name: "Valid minimal config",
			config: &Config{
				Host:     "localhost",
				User:     "testuser",
				Password: "testpass",
				Database: "testdb",
				Table:    "measurements",
			},
			expectErr: false,
		},
		{
			name:      "Missing host",
			config:    &Config{User: "testuser", Password: "testpass", Database: "testdb", Table: "measurements"},
			expectErr: true,
		},
		{
			name: "Host with scheme",
			config: &Config{
				Host:     "https://db.example.com",
				User:     "testuser",
				Password: "testpass",
				Database: "testdb",
				Table:    "measurements",
			},
			expectErr: true,
		},
		{
			name:      "Missing user",
			config:    &Config{Host: "localhost", Password: "testpass", Database: "testdb", Table: "measurements"},
			expectErr: true,
		},
		{
			name:      "Missing password",
			config:    &Config{Host: "localhost", User: "testuser", Database: "testdb", Table: "measurements"},
			expectErr: true,
		},
		{
			name:      "Missing database",
			config:    &Config{Host: "localhost", User: "testuser", Password: "testpass", Table: "measurements"},
			expectErr: true,
		},
		{
			name:      "Missing table",
			config:    &Config{Host: "localhost", User: "testuser", Password: "testpass", Database: "testdb"},
			expectErr: true,
		},
		{
			name: "Invalid port",
			config: &Config{
				Host:     "localhost",
				Port:     70000,
				User:     "testuser",
				Password: "testpass",
				Database: "testdb",
				Table:    "measurements",
			},
			expectErr: true,
		},
		{
			name: "Valid SSL config with disable mode",
			config: &Config{
				Host:     "localhost",
				User:     "testuser",
				Password: "testpass",
				Database: "testdb",
				Table:    "measurements",
				SSLConfiguration: &utils.SSLConfig{
					Mode: utils.SSLModeDisable,
				},
			},
			expectErr: false,
		},
		{
			name: "Invalid SSL config - verify-ca without certificates",
			config: &Config{
				Host:     "localhost",
				User:     "testuser",
				Password: "testpass",
				Database: "testdb",
				Table:    "measurements",
				SSLConfiguration: &utils.SSLConfig{
					Mode: utils.SSLModeVerifyCA,
				},
			},
			expectErr: true,
		},
		{
			name: "Invalid SSH config - missing username",
			config: &Config{
				Host:     "localhost",
				User:     "testuser",
				Password: "testpass",
				Database: "testdb",
				Table:    "measurements",
				SSHConfig: &utils.SSHConfig{
					Host: "bastion.example.com",
					Port: 22,
				},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectErr && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestConfig_Validate_Defaults(t *testing.T) {
	config := &Config{
		Host:     "localhost",
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		Table:    "measurements",
	}

	if err := config.Validate(); err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}

	if config.Port != 3306 {
		t.Errorf("Expected default port 3306, got: %d", config.Port)
	}
	if config.CursorField != "id" {
		t.Errorf("Expected default cursor field id, got: %s", config.CursorField)
	}
}

func TestConfig_Validate_TLSSkipVerify(t *testing.T) {
	config := &Config{
		Host:          "localhost",
		User:          "testuser",
		Password:      "testpass",
		Database:      "testdb",
		Table:         "measurements",
		TLSSkipVerify: true,
	}

	if err := config.Validate(); err != nil {
		t.Fatalf("Expected no error but got: %v", err)
	}

	// The flag promotes the SSL configuration to require mode
	if config.SSLConfiguration == nil || config.SSLConfiguration.Mode != utils.SSLModeRequire {
		t.Errorf("Expected tls_skip_verify to enable require mode, got: %+v", config.SSLConfiguration)
	}
}
