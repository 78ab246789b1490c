package logger

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const TIME_FORMAT = "2006-01-02T15:04:05.000Z07:00"

var once sync.Once
var Log zerolog.Logger

func configureLogger() {
	zerolog.TimeFieldFormat = TIME_FORMAT

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: TIME_FORMAT,
	}

	Log = zerolog.New(output).With().Timestamp().Logger()
}

/*
 * Configures the shared logger on first use. The level only
 * applies if this is the first call into the package.
 */
func GetLoggerConfigured(level zerolog.Level) *zerolog.Logger {
	once.Do(func() {
		configureLogger()
		zerolog.SetGlobalLevel(level)
	})
	return &Log
}

func GetLogger() *zerolog.Logger {
	once.Do(func() {
		configureLogger()
	})
	return &Log
}

/*
 * Parses a level name from config, falling back to info.
 */
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return level
}

func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

/*
 * Raw packet bytes as numbers, so they print as [1 3 0] rather than a string.
 */
func Bytes(data []byte) []int {
	ints := make([]int, len(data))
	for i, b := range data {
		ints[i] = int(b)
	}
	return ints
}
