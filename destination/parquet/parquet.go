package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	pqgo "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"

	"github.com/linka-aq/linka-proxy/constants"
	"github.com/linka-aq/linka-proxy/destination"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils"
	"github.com/linka-aq/linka-proxy/utils/logger"
)

// Parquet archives measurement batches as timestamped parquet files,
// optionally shipping them to S3 on close.
type Parquet struct {
	options     *destination.Options
	config      *Config
	stream      *types.Stream
	fileName    string
	filePath    string
	pqFile      source.ParquetFile
	writer      *pqgo.GenericWriter[types.Measurement]
	recordCount int
	s3Client    *s3.S3
}

func (p *Parquet) GetConfigRef() destination.Config {
	p.config = &Config{}
	return p.config
}

// Spec returns an example configuration
func (p *Parquet) Spec() any {
	return Config{
		Path:        os.TempDir(),
		Compression: "snappy",
	}
}

// setup s3 client if credentials provided
func (p *Parquet) initS3Writer() error {
	if p.config.Bucket == "" || p.config.Region == "" {
		return nil
	}

	s3Config := aws.Config{
		Region: aws.String(p.config.Region),
	}
	if p.config.AccessKey != "" && p.config.SecretKey != "" {
		s3Config.Credentials = credentials.NewStaticCredentials(p.config.AccessKey, p.config.SecretKey, "")
	}
	if p.config.S3Endpoint != "" {
		s3Config.Endpoint = aws.String(p.config.S3Endpoint)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(&s3Config)
	if err != nil {
		return fmt.Errorf("failed to create AWS session: %s", err)
	}
	p.s3Client = s3.New(sess)

	return nil
}

// Setup opens the archive file for the stream and prepares the writer
func (p *Parquet) Setup(stream *types.Stream, options *destination.Options) error {
	if err := p.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}
	p.options = options
	p.stream = stream

	directoryPath := filepath.Join(p.config.Path, stream.Namespace, stream.Name)
	if err := os.MkdirAll(directoryPath, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directories[%s]: %s", directoryPath, err)
	}

	p.fileName = utils.TimestampedFileName(constants.ParquetFileExt)
	if options != nil && options.Identifier != "" {
		p.fileName = fmt.Sprintf("%s_%s", options.Identifier, p.fileName)
	}
	p.filePath = filepath.Join(directoryPath, p.fileName)

	pqFile, err := local.NewLocalFileWriter(p.filePath)
	if err != nil {
		return fmt.Errorf("failed to create parquet file writer: %s", err)
	}
	p.pqFile = pqFile
	p.writer = pqgo.NewGenericWriter[types.Measurement](pqFile, pqgo.Compression(p.codec()))

	if err := p.initS3Writer(); err != nil {
		return fmt.Errorf("failed to setup S3 writer: %s", err)
	}

	return nil
}

// Write appends the batch to the open archive file
func (p *Parquet) Write(_ context.Context, records []types.Measurement) error {
	if len(records) == 0 {
		return nil
	}
	written, err := p.writer.Write(records)
	if err != nil {
		return fmt.Errorf("failed to write records: %s", err)
	}
	p.recordCount += written
	return nil
}

// Check validates the local path and S3 credentials if applicable
func (p *Parquet) Check(ctx context.Context) error {
	if err := p.config.Validate(); err != nil {
		return fmt.Errorf("failed to validate config: %s", err)
	}

	if err := os.MkdirAll(p.config.Path, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create local path: %s", err)
	}

	// Check S3 credentials if provided
	if err := p.initS3Writer(); err != nil {
		return err
	}
	if p.s3Client != nil {
		if _, err := p.s3Client.ListBucketsWithContext(ctx, &s3.ListBucketsInput{}); err != nil {
			return fmt.Errorf("failed to validate S3 credentials: %s", err)
		}
	}

	return nil
}

// Close flushes the archive file, drops it when empty and uploads it to S3
// if configured
func (p *Parquet) Close(ctx context.Context) error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %s", err)
	}
	if err := p.pqFile.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %s", err)
	}

	if p.recordCount == 0 {
		logger.Debugf("removing file[%s]: no records written", p.filePath)
		return os.Remove(p.filePath)
	}
	logger.Infof("archived %d records to %s", p.recordCount, p.filePath)

	if p.s3Client != nil {
		return p.upload(ctx)
	}
	return nil
}

func (p *Parquet) upload(ctx context.Context) error {
	file, err := os.Open(p.filePath)
	if err != nil {
		return fmt.Errorf("failed to open file for upload: %s", err)
	}
	defer file.Close()

	remotePath := filepath.Join(p.config.Prefix, p.stream.Namespace, p.stream.Name, p.fileName)
	if _, err := p.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(remotePath),
		Body:   file,
	}); err != nil {
		return fmt.Errorf("failed to upload to S3: %s", err)
	}
	logger.Infof("uploaded %s to s3://%s/%s", p.fileName, p.config.Bucket, remotePath)
	return nil
}

// Type returns the type of the writer
func (p *Parquet) Type() string {
	return string(types.Parquet)
}

func (p *Parquet) codec() compress.Codec {
	switch p.config.Compression {
	case "gzip":
		return &pqgo.Gzip
	case "zstd":
		return &pqgo.Zstd
	case "lz4":
		return &pqgo.Lz4Raw
	case "none", "uncompressed":
		return &pqgo.Uncompressed
	default:
		return &pqgo.Snappy
	}
}

func init() {
	destination.RegisteredWriters[types.Parquet] = func() destination.Writer {
		return new(Parquet)
	}
}
