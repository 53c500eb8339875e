package types

type AdapterType string

const (
	Linka   AdapterType = "LINKA"
	Parquet AdapterType = "PARQUET"
)

// WriterConfig is a dto for destination writer configuration
type WriterConfig struct {
	Type         AdapterType `json:"type"`
	WriterConfig any         `json:"writer"`
}
