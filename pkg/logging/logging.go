package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo // Default to INFO for unknown
	}
}

func levelFromSlog(l slog.Level) LogLevel {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// LogEntry is the structured log entry passed to the TUI.
type LogEntry struct {
	Timestamp  time.Time
	Level      LogLevel
	Subsystem  string
	Message    string
	Err        error
	Attributes []slog.Attr
}

var (
	defaultHandler slog.Handler
	tuiLogChannel  chan LogEntry
)

const tuiChannelBufferSize = 2048

// InitForCLI initializes the logging system for CLI mode.
// Logs are written as text records to output.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	opts := &slog.HandlerOptions{Level: filterLevel.SlogLevel()}
	defaultHandler = slog.NewTextHandler(output, opts)
	slog.SetDefault(slog.New(defaultHandler))
}

// InitForTUI initializes the logging system for TUI mode.
// Records are delivered on the returned channel instead of a writer so the
// TUI can render them without corrupting the screen.
func InitForTUI(filterLevel LogLevel) <-chan LogEntry {
	tuiLogChannel = make(chan LogEntry, tuiChannelBufferSize)
	defaultHandler = &channelHandler{ch: tuiLogChannel, level: filterLevel.SlogLevel()}
	slog.SetDefault(slog.New(defaultHandler))
	return tuiLogChannel
}

// CloseTUIChannel closes the TUI log channel. Should be called on application shutdown.
func CloseTUIChannel() {
	if tuiLogChannel != nil {
		close(tuiLogChannel)
		tuiLogChannel = nil
		defaultHandler = nil
	}
}

// For returns a Logger for subsystem bound to whatever handler the last
// InitForCLI/InitForTUI call installed. Before initialization it discards.
func For(subsystem string) *Logger {
	if defaultHandler == nil {
		return Discard()
	}
	return New(defaultHandler).With(subsystem)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	For(subsystem).log(LevelDebug, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	For(subsystem).log(LevelInfo, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	For(subsystem).log(LevelWarn, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	if defaultHandler == nil {
		fmt.Fprintf(os.Stderr, "[LOGGING_ERROR] Logger not initialized. Log: [%s] %s: %v\n", subsystem, fmt.Sprintf(messageFmt, args...), err)
		return
	}
	For(subsystem).log(LevelError, err, messageFmt, args...)
}

// Logger is a subsystem-tagged logger that can be injected into components
// instead of relying on the package-level functions.
type Logger struct {
	handler   slog.Handler
	subsystem string
}

// New creates a Logger writing to handler. A nil handler discards.
func New(handler slog.Handler) *Logger {
	return &Logger{handler: handler}
}

// Discard returns a Logger that drops every record.
func Discard() *Logger {
	return &Logger{}
}

// With returns a copy of l tagged with subsystem.
func (l *Logger) With(subsystem string) *Logger {
	if l == nil {
		return Discard()
	}
	return &Logger{handler: l.handler, subsystem: subsystem}
}

func (l *Logger) Debug(messageFmt string, args ...interface{}) {
	l.log(LevelDebug, nil, messageFmt, args...)
}

func (l *Logger) Info(messageFmt string, args ...interface{}) {
	l.log(LevelInfo, nil, messageFmt, args...)
}

func (l *Logger) Warn(messageFmt string, args ...interface{}) {
	l.log(LevelWarn, nil, messageFmt, args...)
}

func (l *Logger) Error(err error, messageFmt string, args ...interface{}) {
	l.log(LevelError, err, messageFmt, args...)
}

func (l *Logger) log(level LogLevel, err error, messageFmt string, args ...interface{}) {
	if l == nil || l.handler == nil {
		return
	}
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level.SlogLevel()) {
		return
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	record := slog.NewRecord(time.Now(), level.SlogLevel(), msg, 0)
	if l.subsystem != "" {
		record.AddAttrs(slog.String("subsystem", l.subsystem))
	}
	if err != nil {
		record.AddAttrs(slog.String("error", err.Error()))
	}
	_ = l.handler.Handle(ctx, record)
}

// channelHandler turns slog records into LogEntry values for the TUI.
type channelHandler struct {
	ch    chan<- LogEntry
	level slog.Level
	attrs []slog.Attr
}

func (h *channelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *channelHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		Timestamp: r.Time,
		Level:     levelFromSlog(r.Level),
		Message:   r.Message,
	}
	entry.Attributes = append(entry.Attributes, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "subsystem":
			entry.Subsystem = a.Value.String()
		case "error":
			entry.Err = fmt.Errorf("%s", a.Value.String())
		default:
			entry.Attributes = append(entry.Attributes, a)
		}
		return true
	})

	// Drop rather than block the caller when the TUI falls behind.
	select {
	case h.ch <- entry:
	default:
	}
	return nil
}

func (h *channelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &channelHandler{ch: h.ch, level: h.level, attrs: merged}
}

func (h *channelHandler) WithGroup(string) slog.Handler {
	return h
}
