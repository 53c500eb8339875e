package parquet

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pqgo "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linka-aq/linka-proxy/destination"
	"github.com/linka-aq/linka-proxy/types"
)

func f64(v float64) *float64 {
	return &v
}

func newTestWriter(t *testing.T, base string, options *destination.Options) *Parquet {
	t.Helper()
	writer := &Parquet{}
	config := writer.GetConfigRef().(*Config)
	config.Path = base
	require.NoError(t, writer.Setup(types.NewStream("measurements", "fiuna"), options))
	return writer
}

func archivedFiles(t *testing.T, base string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(base, "fiuna", "measurements", "*.parquet"))
	require.NoError(t, err)
	return files
}

func TestParquetWriteAndReadBack(t *testing.T) {
	base := t.TempDir()
	writer := newTestWriter(t, base, destination.NewOptions())

	records := []types.Measurement{
		{
			Sensor:    "OPC_N2",
			Source:    "fiuna-02",
			PM2Dot5:   f64(11.5),
			Longitude: f64(-57.52),
			Latitude:  f64(-25.33),
			Recorded:  "2023-01-01T12:00:00Z",
		},
		{
			Sensor:    "OPC_N2",
			Source:    "fiuna-04",
			Humidity:  f64(64),
			Longitude: f64(-57.63),
			Latitude:  f64(-25.29),
			Recorded:  "2023-01-01T12:05:00Z",
		},
	}
	require.NoError(t, writer.Write(context.Background(), records))
	require.NoError(t, writer.Close(context.Background()))

	files := archivedFiles(t, base)
	require.Len(t, files, 1)

	rows, err := pqgo.ReadFile[types.Measurement](files[0])
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "fiuna-02", rows[0].Source)
	assert.Equal(t, "2023-01-01T12:05:00Z", rows[1].Recorded)
	require.NotNil(t, rows[0].PM2Dot5)
	assert.InDelta(t, 11.5, *rows[0].PM2Dot5, 1e-9)
	assert.Nil(t, rows[0].Humidity)
}

func TestParquetEmptyFileRemoved(t *testing.T) {
	base := t.TempDir()
	writer := newTestWriter(t, base, destination.NewOptions())

	require.NoError(t, writer.Write(context.Background(), nil))
	require.NoError(t, writer.Close(context.Background()))

	assert.Empty(t, archivedFiles(t, base))
}

func TestParquetIdentifierPrefix(t *testing.T) {
	base := t.TempDir()
	writer := newTestWriter(t, base, destination.NewOptions(destination.WithIdentifier("run42")))

	require.NoError(t, writer.Write(context.Background(), []types.Measurement{{
		Sensor:    "OPC_N2",
		Source:    "fiuna-05",
		Longitude: f64(-57.58),
		Latitude:  f64(-25.34),
		Recorded:  "2023-01-01T12:10:00Z",
	}}))
	require.NoError(t, writer.Close(context.Background()))

	files := archivedFiles(t, base)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(filepath.Base(files[0]), "run42_"))
}

func TestParquetCheckCreatesPath(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "archive")
	writer := &Parquet{}
	config := writer.GetConfigRef().(*Config)
	config.Path = base

	require.NoError(t, writer.Check(context.Background()))
	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
