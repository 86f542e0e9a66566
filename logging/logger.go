package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. It is usable before InitLogger runs and
// then writes to stderr with logrus defaults.
var Logger = logrus.New()

var (
	once    sync.Once
	logFile *lumberjack.Logger
)

// CustomFormatter renders one line per entry with a fresh event id.
type CustomFormatter struct {
	SystemName string
	Location   *time.Location
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	location := f.Location
	if location == nil {
		location = time.UTC
	}
	localTime := entry.Time.In(location)

	b.WriteString(fmt.Sprintf("Date: %s, Time: %s, ", localTime.Format("2006-01-02"), localTime.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("Event Source: %s, ", f.SystemName))
	b.WriteString(fmt.Sprintf("Event Type: %s, ", strings.ToUpper(entry.Level.String())))
	b.WriteString(fmt.Sprintf("Event ID: %s, ", uuid.New().String()))
	b.WriteString(fmt.Sprintf("Message: %s", entry.Message))

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(", %s: %v", k, entry.Data[k]))
		}
	}

	if entry.HasCaller() {
		b.WriteString(fmt.Sprintf(", Location: %s:%d in %s", filepath.Base(entry.Caller.File), entry.Caller.Line, entry.Caller.Function))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

type Options struct {
	SystemName string
	// File is the rotating log file. Empty disables file output.
	File  string
	Level string
	// Console also writes entries to stdout.
	Console bool
}

// InitLogger configures Logger once. Later calls are no-ops.
func InitLogger(opts Options) error {
	var initErr error
	once.Do(func() {
		level := logrus.InfoLevel
		if opts.Level != "" {
			parsed, err := logrus.ParseLevel(opts.Level)
			if err != nil {
				initErr = fmt.Errorf("invalid log level %q: %w", opts.Level, err)
				return
			}
			level = parsed
		}

		var writers []io.Writer
		if opts.Console {
			writers = append(writers, os.Stdout)
		}
		if opts.File != "" {
			if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
				initErr = fmt.Errorf("failed to create log directory: %w", err)
				return
			}
			logFile = &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
			writers = append(writers, logFile)
		}
		if len(writers) == 0 {
			writers = append(writers, io.Discard)
		}

		Logger.SetOutput(io.MultiWriter(writers...))
		Logger.SetFormatter(&CustomFormatter{SystemName: opts.SystemName, Location: time.Local})
		Logger.SetLevel(level)
		Logger.SetReportCaller(true)

		Logger.Infof("Event ID: LOGGER_INITIALIZED, Description: Logger initialized for %s, file output: %q", opts.SystemName, opts.File)
	})
	return initErr
}

// Close flushes and closes the rotating log file, if any.
func Close() error {
	if logFile == nil {
		return nil
	}
	return logFile.Close()
}
