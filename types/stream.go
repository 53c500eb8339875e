package types

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/linka-aq/linka-proxy/constants"
	"github.com/linka-aq/linka-proxy/utils/logger"
	"github.com/spf13/viper"
)

// Column describes one column discovered on the source table
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}

// Stream identifies the table measurements are pulled from and the column
// the incremental cursor orders by.
type Stream struct {
	Name        string   `json:"name"`
	Namespace   string   `json:"namespace,omitempty"`
	CursorField string   `json:"cursor_field"`
	Columns     []Column `json:"columns,omitempty"`
}

func NewStream(name, namespace string) *Stream {
	return &Stream{
		Name:        name,
		Namespace:   namespace,
		CursorField: constants.DefaultCursorField,
	}
}

// WithCursorField overrides the column incremental reads order by
func (s *Stream) WithCursorField(field string) *Stream {
	if field != "" {
		s.CursorField = field
	}
	return s
}

// ID returns the fully qualified stream identity
func (s *Stream) ID() string {
	return fmt.Sprintf("%s.%s", s.Namespace, s.Name)
}

// Catalog is a dto for the discovered stream listing
type Catalog struct {
	Streams []*Stream `json:"streams,omitempty"`
}

func GetWrappedCatalog(streams []*Stream) *Catalog {
	return &Catalog{
		Streams: streams,
	}
}

// LogCatalog emits the catalog row on stdout and persists it to the
// configured streams path.
func LogCatalog(streams []*Stream) {
	message := Message{
		Type:    CatalogMessage,
		Catalog: GetWrappedCatalog(streams),
	}
	logger.Info(message)

	content, err := json.MarshalIndent(message.Catalog, "", "    ")
	if err != nil {
		logger.Fatalf("failed to marshal catalog: %s", err)
	}

	streamsPath := viper.GetString(constants.StreamsPath)
	if err := os.WriteFile(streamsPath, content, 0644); err != nil {
		logger.Fatalf("failed to write catalog to file: %s", err)
	}

	logger.Infof("Catalog file created at: %s", streamsPath)
}
