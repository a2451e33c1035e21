package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	permission = 0664

	// Name is attached to every event produced by Default.
	Name = "rubika"
)

// LogBuild assembles a zerolog logger from a file path or writer.
type LogBuild struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

// LogData holds the logger produced by LogBuild.Make. LogFile is set only
// when the builder was given a path, and must be closed by the caller.
type LogData struct {
	LogFile *os.File
	Logger  zerolog.Logger
}

// Build starts a LogBuild writing to stderr at debug level.
func Build() *LogBuild {
	return &LogBuild{writer: os.Stderr, level: zerolog.DebugLevel}
}

func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

func (build *LogBuild) WithLevel(level zerolog.Level) *LogBuild {
	build.level = level
	return build
}

func (build *LogBuild) Make() (logData *LogData, err error) {
	logData = new(LogData)
	writer := build.writer
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		writer = zerolog.SyncWriter(logData.LogFile)
	}
	logData.Logger = zerolog.New(writer).
		Level(build.level).
		With().
		Timestamp().
		Str("logger", Name).
		Logger()
	return logData, nil
}

// Zerolog adapts a zerolog.Logger to Logger.
type Zerolog struct {
	logger zerolog.Logger
}

// NewZerolog returns a Logger writing through l.
func NewZerolog(l zerolog.Logger) *Zerolog {
	return &Zerolog{logger: l}
}

// Default returns the logger used when a Connection is not given one:
// debug level on stderr.
func Default() Logger {
	logData, _ := Build().Make()
	return NewZerolog(logData.Logger)
}

func (z *Zerolog) Error(msg string, args ...any) {
	withFields(z.logger.Error(), args).Msg(msg)
}

func (z *Zerolog) Warn(msg string, args ...any) {
	withFields(z.logger.Warn(), args).Msg(msg)
}

func (z *Zerolog) Info(msg string, args ...any) {
	withFields(z.logger.Info(), args).Msg(msg)
}

func (z *Zerolog) Debug(msg string, args ...any) {
	withFields(z.logger.Debug(), args).Msg(msg)
}

// withFields attaches slog-style key/value pairs to e. A trailing key
// without a value is recorded under "!BADKEY" the way log/slog does.
func withFields(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			e = e.Interface("!BADKEY", args[i])
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		switch v := args[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case string:
			e = e.Str(key, v)
		case int:
			e = e.Int(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}
