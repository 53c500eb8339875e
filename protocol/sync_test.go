package protocol

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	_ "github.com/linka-aq/linka-proxy/destination/linka"
	"github.com/linka-aq/linka-proxy/state"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/stretchr/testify/require"
)

type fakeConfig struct{}

func (c *fakeConfig) Validate() error { return nil }

// fakeConnector serves a preset batch and records what it was asked for.
type fakeConnector struct {
	batch    *types.Batch
	fetchErr error
	gotSince int64
	gotLimit int64
}

func (f *fakeConnector) GetConfigRef() Config { return &fakeConfig{} }

func (f *fakeConnector) Spec() any { return fakeConfig{} }

func (f *fakeConnector) Setup(context.Context) error { return nil }

func (f *fakeConnector) Check(context.Context) error { return nil }

func (f *fakeConnector) Type() string { return "FAKE" }

func (f *fakeConnector) Close() error { return nil }

func (f *fakeConnector) Stream() *types.Stream {
	return types.NewStream("measurements", "fiuna").WithCursorField("id")
}

func (f *fakeConnector) Discover(context.Context) ([]*types.Stream, error) {
	return []*types.Stream{f.Stream()}, nil
}

func (f *fakeConnector) FetchIncremental(_ context.Context, since, limit int64) (*types.Batch, error) {
	f.gotSince = since
	f.gotLimit = limit
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.batch, nil
}

func f64(v float64) *float64 { return &v }

func testRecords(n int) []types.Measurement {
	records := make([]types.Measurement, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, types.Measurement{
			Sensor:    "SPS30",
			Source:    "fiuna-02",
			Longitude: f64(-57.5826),
			Latitude:  f64(-25.3283),
			PM2Dot5:   f64(12.5 + float64(i)),
			Recorded:  "2024-06-01T12:00:00Z",
		})
	}
	return records
}

// sinkServer counts deliveries and captures the decoded payload of the last one.
func sinkServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32, *[]map[string]any) {
	t.Helper()
	var requests atomic.Int32
	var payload []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(status)
		if status >= 400 {
			_, _ = w.Write([]byte("ingestion unavailable"))
		}
	}))
	t.Cleanup(server.Close)
	return server, &requests, &payload
}

func linkaConfig(endpoint string) *types.WriterConfig {
	return &types.WriterConfig{
		Type: types.Linka,
		WriterConfig: map[string]any{
			"endpoint": endpoint,
			"api_key":  "test-key",
		},
	}
}

func cursorFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".last")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return path
}

func TestRunSyncDeliversAndCommits(t *testing.T) {
	server, requests, payload := sinkServer(t, http.StatusOK)
	path := cursorFile(t, "")
	connector := &fakeConnector{batch: &types.Batch{Records: testRecords(3), Last: 12}}

	summary, err := RunSync(context.Background(), connector, linkaConfig(server.URL), nil, state.NewStore(path), 10000, "run1")
	require.NoError(t, err)

	require.EqualValues(t, 0, connector.gotSince)
	require.EqualValues(t, 10000, connector.gotLimit)
	require.EqualValues(t, 1, requests.Load())
	require.Len(t, *payload, 3)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "12", string(raw))

	require.EqualValues(t, 0, summary.PreviousCursor)
	require.EqualValues(t, 12, summary.Cursor)
	require.EqualValues(t, 3, summary.RowsFetched)
	require.EqualValues(t, 3, summary.RowsPushed)
	require.EqualValues(t, 0, summary.RowsDropped)
}

func TestRunSyncUpToDate(t *testing.T) {
	server, requests, _ := sinkServer(t, http.StatusOK)
	path := cursorFile(t, "12")
	connector := &fakeConnector{batch: &types.Batch{Last: 12}}

	summary, err := RunSync(context.Background(), connector, linkaConfig(server.URL), nil, state.NewStore(path), 500, "run2")
	require.NoError(t, err)

	require.EqualValues(t, 12, connector.gotSince)
	require.EqualValues(t, 500, connector.gotLimit)
	require.EqualValues(t, 0, requests.Load())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "12", string(raw))

	require.EqualValues(t, 0, summary.RowsFetched)
	require.EqualValues(t, 12, summary.Cursor)
}

func TestRunSyncSinkFailureKeepsCursor(t *testing.T) {
	server, requests, _ := sinkServer(t, http.StatusInternalServerError)
	path := cursorFile(t, "12")
	connector := &fakeConnector{batch: &types.Batch{Records: testRecords(2), Last: 14}}

	_, err := RunSync(context.Background(), connector, linkaConfig(server.URL), nil, state.NewStore(path), 10000, "run3")
	require.Error(t, err)
	require.Equal(t, types.KindTransientSink, types.KindOf(err))
	require.EqualValues(t, 1, requests.Load())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "12", string(raw))
}

func TestRunSyncAllDroppedAdvancesCursor(t *testing.T) {
	server, requests, _ := sinkServer(t, http.StatusOK)
	path := cursorFile(t, "12")
	connector := &fakeConnector{batch: &types.Batch{Dropped: 2, Last: 14}}

	summary, err := RunSync(context.Background(), connector, linkaConfig(server.URL), nil, state.NewStore(path), 10000, "run4")
	require.NoError(t, err)
	require.EqualValues(t, 0, requests.Load())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "14", string(raw))

	require.EqualValues(t, 2, summary.RowsFetched)
	require.EqualValues(t, 2, summary.RowsDropped)
	require.EqualValues(t, 0, summary.RowsPushed)
	require.EqualValues(t, 14, summary.Cursor)
}

func TestRunSyncSourceFailure(t *testing.T) {
	server, requests, _ := sinkServer(t, http.StatusOK)
	path := cursorFile(t, "")
	connector := &fakeConnector{fetchErr: errors.New("connection refused")}

	_, err := RunSync(context.Background(), connector, linkaConfig(server.URL), nil, state.NewStore(path), 10000, "run5")
	require.Error(t, err)
	require.Equal(t, types.KindTransientSource, types.KindOf(err))
	require.EqualValues(t, 0, requests.Load())

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestRunSyncCorruptCursor(t *testing.T) {
	server, _, _ := sinkServer(t, http.StatusOK)
	path := cursorFile(t, "not-a-number")
	connector := &fakeConnector{batch: &types.Batch{Last: 12}}

	_, err := RunSync(context.Background(), connector, linkaConfig(server.URL), nil, state.NewStore(path), 10000, "run6")
	require.Error(t, err)
	require.Equal(t, types.KindConfig, types.KindOf(err))
}

func TestRunSyncArchiveFailureDoesNotBlockCommit(t *testing.T) {
	server, requests, _ := sinkServer(t, http.StatusOK)
	path := cursorFile(t, "")
	connector := &fakeConnector{batch: &types.Batch{Records: testRecords(1), Last: 10}}

	// archive writer pointing at an unknown type fails to construct; the run
	// must still deliver and commit
	badArchive := &types.WriterConfig{Type: types.AdapterType("NOPE")}

	summary, err := RunSync(context.Background(), connector, linkaConfig(server.URL), badArchive, state.NewStore(path), 10000, "run7")
	require.NoError(t, err)
	require.EqualValues(t, 1, requests.Load())
	require.EqualValues(t, 10, summary.Cursor)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "10", string(raw))
}
