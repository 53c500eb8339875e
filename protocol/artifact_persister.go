package protocol

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/linka-aq/linka-proxy/utils"
	"github.com/linka-aq/linka-proxy/utils/logger"
	"github.com/linka-aq/linka-proxy/utils/safego"
	"github.com/spf13/viper"
)

const artifactSubDir = "_linka_runtime" // Directory within the base path for artifacts

// PersistenceConfig holds configuration for artifact persistence
type PersistenceConfig struct {
	Type         string `json:"type"`          // "s3" (only option currently)
	Bucket       string `json:"bucket"`        // S3 bucket name
	Region       string `json:"region"`        // AWS region
	BasePath     string `json:"base_path"`     // Base path in bucket
	AccessKey    string `json:"access_key"`    // AWS access key (optional)
	SecretKey    string `json:"secret_key"`    // AWS secret key (optional)
	SessionToken string `json:"session_token"` // AWS session token (optional)
	Endpoint     string `json:"endpoint"`      // Custom S3 endpoint (optional)
	UseSSL       bool   `json:"use_ssl"`       // Use SSL for S3 (default: true)
	PathStyle    bool   `json:"path_style"`    // Use path-style addressing (optional)
	Interval     string `json:"interval"`      // Upload interval (e.g. "5m", default: "5m")
}

// S3ArtifactConfig holds the necessary S3 configuration parameters.
type S3ArtifactConfig struct {
	Bucket       string
	Region       string
	BasePath     string // The base S3 path (e.g., prefix or parsed path)
	AccessKey    string
	SecretKey    string
	SessionToken string
	Endpoint     string
	UseSSL       bool
	PathStyle    bool
}

// ArtifactPersister handles uploading runtime artifacts (cursor file, logs) to S3.
type ArtifactPersister struct {
	s3Client     *s3.S3
	s3Uploader   *s3manager.Uploader
	bucket       string
	fullBasePath string // Combined BasePath + artifactSubDir
}

// NewArtifactPersister creates and initializes an ArtifactPersister
func NewArtifactPersister(cfg S3ArtifactConfig, isActive bool) (*ArtifactPersister, error) {
	// Early return if inactive
	if !isActive {
		return nil, nil
	}

	// Basic validation - log and return inactive for missing bucket
	if cfg.Bucket == "" {
		logger.Error("S3 bucket name cannot be empty for ArtifactPersister - persistence disabled")
		return nil, nil
	}

	awsCfg := aws.NewConfig()

	if cfg.Region != "" {
		awsCfg.WithRegion(cfg.Region)
	} else if cfg.Endpoint == "" {
		logger.Warn("S3 region not explicitly provided for artifact persistence, attempting to use default AWS credential chain resolution")
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		logger.Info("Using explicit S3 credentials for artifact persistence")
		awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken))
	} else {
		logger.Info("Explicit S3 credentials not provided for artifact persistence, using default AWS credential chain")
	}

	if cfg.Endpoint != "" {
		logger.Infof("Using custom S3 endpoint for artifact persistence: %s", cfg.Endpoint)
		awsCfg.WithEndpoint(cfg.Endpoint)
		awsCfg.WithS3ForcePathStyle(cfg.PathStyle)
		if !cfg.UseSSL {
			awsCfg.WithDisableSSL(true)
		}
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		logger.Errorf("Failed to create AWS session: %v - artifact persistence disabled", err)
		return nil, nil
	}

	// Verify credentials - log and return inactive if failed
	if _, err := sess.Config.Credentials.Get(); err != nil {
		logger.Errorf("Failed to get AWS credentials: %v - artifact persistence disabled", err)
		return nil, nil
	}

	s3Client := s3.New(sess)
	s3Uploader := s3manager.NewUploader(sess)

	// Prepare paths
	trimmedBasePath := strings.Trim(cfg.BasePath, "/")
	fullBasePath := artifactSubDir
	if trimmedBasePath != "" {
		fullBasePath = filepath.Join(trimmedBasePath, artifactSubDir)
	}
	fullBasePath = filepath.ToSlash(fullBasePath) // Ensure forward slashes for S3

	// S3 write check - log and return inactive if failed
	testKey := strings.Join([]string{fullBasePath, ".linka_write_test"}, "/")
	_, err = s3Client.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(testKey),
		Body:   strings.NewReader("linka-proxy artifact persister write test"),
	})
	if err != nil {
		logger.Errorf("S3 write check failed: %v - artifact persistence disabled", err)
		return nil, nil
	}
	// Clean up test object
	_, _ = s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(testKey),
	})

	persister := &ArtifactPersister{
		s3Client:     s3Client,
		s3Uploader:   s3Uploader,
		bucket:       cfg.Bucket,
		fullBasePath: fullBasePath,
	}

	logger.Infof("ArtifactPersister initialized. Target: s3://%s/%s/", cfg.Bucket, fullBasePath)
	return persister, nil
}

// InitializePersister loads the persistence config and starts the periodic
// uploader for the cursor file. Inactive unless PERSISTENCE_ENABLED is set;
// failures only abort the run when PERSISTENCE_REQUIRED is set.
func InitializePersister(ctx context.Context, cursorPath string) (*ArtifactPersister, error) {
	if !viper.GetBool("PERSISTENCE_ENABLED") {
		return nil, nil
	}

	persistenceConfigPath := viper.GetString("PERSISTENCE_CONFIG")
	if persistenceConfigPath == "" {
		msg := "Artifact persistence is enabled but no config file specified (set PERSISTENCE_CONFIG)"
		if viper.GetBool("PERSISTENCE_REQUIRED") {
			return nil, errors.New(msg)
		}
		logger.Error(msg)
		return nil, nil
	}

	var config PersistenceConfig
	if err := utils.UnmarshalFile(persistenceConfigPath, &config, true); err != nil {
		msg := fmt.Sprintf("Failed to load persistence config file: %v", err)
		if viper.GetBool("PERSISTENCE_REQUIRED") {
			return nil, errors.New(msg)
		}
		logger.Error(msg)
		return nil, nil
	}

	if config.Type != "s3" {
		logger.Errorf("Unsupported persistence type: %s (only s3 supported)", config.Type)
		return nil, nil
	}

	if config.Bucket == "" {
		msg := "S3 bucket name cannot be empty in persistence config"
		if viper.GetBool("PERSISTENCE_REQUIRED") {
			return nil, errors.New(msg)
		}
		logger.Error(msg)
		return nil, nil
	}

	s3Config := S3ArtifactConfig{
		Bucket:       config.Bucket,
		Region:       config.Region,
		BasePath:     config.BasePath,
		AccessKey:    config.AccessKey,
		SecretKey:    config.SecretKey,
		SessionToken: config.SessionToken,
		Endpoint:     config.Endpoint,
		UseSSL:       config.UseSSL,
		PathStyle:    config.PathStyle,
	}

	persister, err := NewArtifactPersister(s3Config, true)
	if err != nil || persister == nil {
		msg := fmt.Sprintf("Failed to initialize artifact persister: %v", err)
		if viper.GetBool("PERSISTENCE_REQUIRED") {
			return nil, errors.New(msg)
		}
		logger.Error(msg)
		return nil, nil
	}

	interval := 5 * time.Minute // default
	if config.Interval != "" {
		customInterval, err := time.ParseDuration(config.Interval)
		if err == nil && customInterval > 0 {
			interval = customInterval
		} else {
			logger.Warnf("Invalid interval format in config (%s), using default (5m)", config.Interval)
		}
	}

	safego.Run(func() {
		RunPeriodicStateUploader(ctx, persister, interval, cursorPath)
	})
	logger.Infof("S3 artifact persistence enabled. Uploading %s every %v", filepath.Base(cursorPath), interval)

	return persister, nil
}

// UploadFile uploads a single local file to the configured S3 path
func (ap *ArtifactPersister) UploadFile(ctx context.Context, localPath string, s3KeySuffix string) error {
	if ap == nil || ap.s3Uploader == nil {
		return fmt.Errorf("ArtifactPersister not initialized")
	}

	file, err := os.Open(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("Local artifact file not found for upload: %s", localPath)
			return nil // Don't fail hard
		}
		return fmt.Errorf("failed to open local artifact file %s: %w", localPath, err)
	}
	defer file.Close()

	s3Key := filepath.ToSlash(filepath.Join(ap.fullBasePath, s3KeySuffix))

	logger.Debugf("Uploading artifact %s to s3://%s/%s", localPath, ap.bucket, s3Key)

	_, err = ap.s3Uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(ap.bucket),
		Key:    aws.String(s3Key),
		Body:   file,
	})
	if err != nil {
		logger.Warnf("Failed to upload artifact %s to S3: %v", localPath, err)
		return fmt.Errorf("failed to upload artifact %s to s3://%s/%s: %w", localPath, ap.bucket, s3Key, err)
	}

	logger.Debugf("Successfully uploaded artifact %s to s3://%s/%s", localPath, ap.bucket, s3Key)
	return nil
}

// RunPeriodicStateUploader periodically uploads the cursor file so an
// off-host copy of the sync position survives instance loss.
func RunPeriodicStateUploader(ctx context.Context, persister *ArtifactPersister, interval time.Duration, cursorPath string) {
	if persister == nil {
		return
	}

	s3KeySuffix := filepath.Base(cursorPath)

	logger.Infof("Starting periodic cursor uploader. Interval: %v. Target: s3://%s/%s",
		interval,
		persister.bucket,
		filepath.ToSlash(filepath.Join(persister.fullBasePath, s3KeySuffix)))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping periodic cursor uploader due to context cancellation.")
			// Final upload attempt on cancellation
			finalUploadCtx, finalCancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := persister.UploadFile(finalUploadCtx, cursorPath, s3KeySuffix)
			finalCancel()
			if err != nil {
				logger.Errorf("Final cursor upload to S3 failed: %v", err)
			}
			return
		case <-ticker.C:
			uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := persister.UploadFile(uploadCtx, cursorPath, s3KeySuffix)
			cancel()
			if err == nil {
				logger.Debugf("Periodic cursor upload successful for %s", cursorPath)
			}
		}
	}
}
