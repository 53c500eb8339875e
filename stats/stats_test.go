package stats

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/linka-aq/linka-proxy/constants"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func setupStatsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Set(constants.ConfigFolder, dir)
	Init()
	// the singleton caches its folder on first use, point it at this test's dir
	GetInstance().configDir = dir
	return dir
}

func readMetrics(t *testing.T, dir string) map[string]RunMetrics {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, metricsFilePrefix+GetAnonymousID()))
	require.NoError(t, err)

	metrics := make(map[string]RunMetrics)
	require.NoError(t, json.Unmarshal(data, &metrics))
	return metrics
}

func TestComputeConfigHash(t *testing.T) {
	first := ComputeConfigHash(map[string]any{"host": "db-a"}, "LINKA")
	same := ComputeConfigHash(map[string]any{"host": "db-a"}, "LINKA")
	other := ComputeConfigHash(map[string]any{"host": "db-b"}, "LINKA")

	require.NotEmpty(t, first)
	require.Equal(t, first, same)
	require.NotEqual(t, first, other)
}

func TestTrackSyncCompleted(t *testing.T) {
	dir := setupStatsDir(t)

	hash := ComputeConfigHash("source", "destination")
	TrackSyncCompleted(hash, &types.SyncSummary{RowsPushed: 3}, nil)
	TrackSyncCompleted(hash, nil, errors.New("server rejected batch (status 500)"))

	entry := readMetrics(t, dir)[hash]
	require.Equal(t, 2, entry.Total)
	require.Equal(t, 1, entry.Success)
	require.Equal(t, 1, entry.Failed)
	require.Equal(t, int64(3), entry.Records)
	require.Contains(t, entry.LastError, "status 500")
	require.NotEmpty(t, entry.LastRunAt)

	year, week := time.Now().ISOWeek()
	require.Equal(t, 2, entry.Weeks[fmt.Sprintf("%d-W%02d", year, week)])
}

func TestTrackDiscoverCompleted(t *testing.T) {
	dir := setupStatsDir(t)

	TrackDiscoverCompleted(1, time.Second, nil)

	entry := readMetrics(t, dir)["discover"]
	require.Equal(t, 1, entry.Total)
	require.Equal(t, 1, entry.Success)
	require.Equal(t, int64(1), entry.Records)
}

func TestAnonymousIDStable(t *testing.T) {
	setupStatsDir(t)

	first := GetAnonymousID()
	second := GetAnonymousID()
	require.Equal(t, first, second)
	require.Len(t, first, 26)
}
