package constants

const (
	ParquetFileExt = "parquet"

	// EnvPrefix is prepended (with an underscore) to every environment
	// variable the proxy reads, e.g. LINKA_PROXY_FIUNA_HOST.
	EnvPrefix = "LINKA_PROXY"

	// DefaultCursorField is the ordering column used for incremental pulls
	// when the source config does not name one.
	DefaultCursorField = "id"

	// DefaultCursorPath is where the committed cursor lives when neither
	// --state nor LINKA_PROXY_FIUNA_LAST_PATH is set.
	DefaultCursorPath = ".last"

	// DefaultBatchSize caps the rows fetched from the source in one run.
	DefaultBatchSize = 10000
)

// viper keys shared across packages
const (
	ConfigFolder  = "CONFIG_FOLDER"
	StatePath     = "STATE_PATH"
	StreamsPath   = "STREAMS_PATH"
	EncryptionKey = "ENCRYPTION_KEY"
	LogLevel      = "LOG_LEVEL"
)
