package parquet

import (
	"fmt"

	"github.com/linka-aq/linka-proxy/utils"
)

type Config struct {
	Path      string `json:"local_path"` // Local directory the archive files are written under
	Bucket    string `json:"s3_bucket,omitempty"`
	Region    string `json:"s3_region,omitempty"`
	AccessKey string `json:"s3_access_key,omitempty"`
	SecretKey string `json:"s3_secret_key,omitempty"`
	Prefix    string `json:"s3_path,omitempty"`
	// S3 endpoint for custom S3-compatible services (like MinIO)
	S3Endpoint string `json:"s3_endpoint,omitempty"`

	// Compression codec: snappy (default), gzip, zstd, lz4, none
	Compression string `json:"compression,omitempty"`
}

func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("local_path is required")
	}

	// Validate compression codec if specified
	if c.Compression != "" {
		validCompressions := []string{"snappy", "gzip", "zstd", "lz4", "none", "uncompressed"}
		_, found := utils.ArrayContains(validCompressions, func(codec string) bool {
			return codec == c.Compression
		})
		if !found {
			return fmt.Errorf("invalid compression codec: %s. Valid options are: snappy, gzip, zstd, lz4, none, uncompressed", c.Compression)
		}
	}

	return utils.Validate(c)
}
