package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/linka-aq/linka-proxy/constants"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger zerolog.Logger

func init() {
	// pre-Init default so packages logging before the root command runs
	// still produce output
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// Init wires the process logger: human readable lines on stderr plus a
// rotating file under CONFIG_FOLDER/logs. Level comes from LINKA_PROXY_LOG_LEVEL.
func Init() {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(viper.GetString(constants.LogLevel))); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339},
	}

	logDir := filepath.Join(viper.GetString(constants.ConfigFolder), "logs")
	if err := os.MkdirAll(logDir, os.ModePerm); err == nil {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "linka-proxy.log"),
			MaxSize:    100,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).With().Timestamp().Logger()
}

// Info logs its arguments; a single non-string argument is treated as a
// protocol row and emitted as one JSON line on stdout so wrappers can parse it.
func Info(v ...any) {
	if len(v) == 1 {
		if _, isString := v[0].(string); !isString {
			if raw, err := json.Marshal(v[0]); err == nil {
				fmt.Fprintln(os.Stdout, string(raw))
				return
			}
		}
	}
	logger.Info().Msg(fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	logger.Info().Msgf(format, v...)
}

func Debug(v ...any) {
	logger.Debug().Msg(fmt.Sprint(v...))
}

func Debugf(format string, v ...any) {
	logger.Debug().Msgf(format, v...)
}

func Warn(v ...any) {
	logger.Warn().Msg(fmt.Sprint(v...))
}

func Warnf(format string, v ...any) {
	logger.Warn().Msgf(format, v...)
}

func Error(v ...any) {
	logger.Error().Msg(fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	logger.Error().Msgf(format, v...)
}

// Fatal logs the arguments at fatal level and exits with a non-zero code.
func Fatal(v ...any) {
	logger.Fatal().Msg(fmt.Sprint(v...))
}

func Fatalf(format string, v ...any) {
	logger.Fatal().Msgf(format, v...)
}

// FileLogger marshals content into CONFIG_FOLDER/<name><ext>, overwriting any
// previous run's artifact.
func FileLogger(content any, name, ext string) error {
	raw, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s artifact: %s", name, err)
	}

	folder := viper.GetString(constants.ConfigFolder)
	if folder == "" {
		folder = os.TempDir()
	}
	if err := os.MkdirAll(folder, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create artifact folder[%s]: %s", folder, err)
	}

	path := filepath.Join(folder, name+ext)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact file[%s]: %s", path, err)
	}
	return nil
}
