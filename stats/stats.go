package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/linka-aq/linka-proxy/constants"
	"github.com/linka-aq/linka-proxy/types"
	"github.com/linka-aq/linka-proxy/utils"
	"github.com/linka-aq/linka-proxy/utils/logger"
	"github.com/mitchellh/hashstructure"
	"github.com/spf13/viper"
)

var (
	once     sync.Once
	instance *Stats
	idLock   sync.Mutex
)

const (
	anonymousIDFile   = "stats_id"
	metricsFilePrefix = "run_metrics_"
)

// Stats records local run accounting. Everything here is best-effort: the
// proxy never fails a run over bookkeeping and never sends these numbers
// anywhere.
type Stats struct {
	enabled   bool
	configDir string
}

// RunMetrics aggregates the outcomes of runs sharing one config hash.
type RunMetrics struct {
	Total     int            `json:"total"`
	Success   int            `json:"success"`
	Failed    int            `json:"failed"`
	Records   int64          `json:"records"`
	LastRunAt string         `json:"last_run_at"`
	LastError string         `json:"last_error,omitempty"`
	Weeks     map[string]int `json:"weeks"` // Key format: "YYYY-Www" (e.g., "2023-W43")
}

func createStats() {
	configDir := viper.GetString(constants.ConfigFolder)
	if configDir == "" {
		configDir = os.TempDir()
	}
	instance = &Stats{
		enabled:   !viper.GetBool("STATS_DISABLED"),
		configDir: configDir,
	}
}

// Init builds the singleton from resolved viper state; the root command
// calls it once after flags are parsed.
func Init() {
	GetInstance()
}

func GetInstance() *Stats {
	once.Do(createStats)
	return instance
}

// GetAnonymousID returns the stable random identifier naming this
// installation's metrics file, creating it on first use.
func GetAnonymousID() string {
	idLock.Lock()
	defer idLock.Unlock()

	configDir := GetInstance().configDir
	idPath := filepath.Join(configDir, anonymousIDFile)

	if idBytes, err := os.ReadFile(idPath); err == nil {
		return string(idBytes)
	}

	newID := utils.ULID()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		logger.Debugf("failed to create stats dir: %s", err)
	}
	if err := os.WriteFile(idPath, []byte(newID), 0600); err != nil {
		logger.Debugf("failed to write anonymous id: %s", err)
	}
	return newID
}

// ComputeConfigHash derives a stable key from the effective configuration
// structs, so runs with identical settings share one metrics bucket no
// matter whether the settings came from files or the environment.
func ComputeConfigHash(parts ...any) string {
	hash, err := hashstructure.Hash(parts, nil)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", hash)
}

// TrackSyncCompleted records the outcome of one sync run under its config hash.
func TrackSyncCompleted(configHash string, summary *types.SyncSummary, runErr error) {
	s := GetInstance()
	if s == nil || !s.enabled || configHash == "" {
		return
	}

	s.record(configHash, func(m *RunMetrics) {
		m.Total++
		if runErr != nil {
			m.Failed++
			m.LastError = runErr.Error()
			return
		}
		m.Success++
		m.LastError = ""
		if summary != nil {
			m.Records += summary.RowsPushed
		}
	})
}

// TrackDiscoverCompleted records the outcome of one discover run.
func TrackDiscoverCompleted(streamCount int, duration time.Duration, runErr error) {
	s := GetInstance()
	if s == nil || !s.enabled {
		return
	}

	s.record("discover", func(m *RunMetrics) {
		m.Total++
		if runErr != nil {
			m.Failed++
			m.LastError = runErr.Error()
			return
		}
		m.Success++
		m.LastError = ""
		m.Records += int64(streamCount)
	})
	logger.Debugf("discover finished in %.2fs with %d streams", duration.Seconds(), streamCount)
}

// record applies update to the metrics entry under key and persists the file.
func (s *Stats) record(key string, update func(*RunMetrics)) {
	metricsPath := filepath.Join(s.configDir, metricsFilePrefix+GetAnonymousID())

	metrics := make(map[string]RunMetrics)
	if data, err := os.ReadFile(metricsPath); err == nil {
		_ = json.Unmarshal(data, &metrics) // Best-effort read
	}

	year, week := time.Now().ISOWeek()
	weekKey := fmt.Sprintf("%d-W%02d", year, week)

	entry, exists := metrics[key]
	if !exists || entry.Weeks == nil {
		entry.Weeks = make(map[string]int)
	}
	update(&entry)
	entry.LastRunAt = time.Now().UTC().Format(time.RFC3339)
	entry.Weeks[weekKey]++
	metrics[key] = entry

	if data, err := json.Marshal(metrics); err == nil {
		_ = os.WriteFile(metricsPath, data, 0600) // Best-effort write
	} else {
		logger.Debugf("failed to save run metrics: %s", err)
	}
}
