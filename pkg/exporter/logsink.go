package exporter

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
)

// LogLevel is the severity of a plugin log line.
type LogLevel string

// Log levels.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogLine is a single message emitted by an exporter during a run.
type LogLine struct {
	Level   LogLevel
	Message string
}

// LogSink collects exporter log output in order. The host replays it after the
// run instead of letting the exporter write to the shared console. Safe for
// concurrent use.
type LogSink struct {
	mu    sync.Mutex
	lines []LogLine
}

// NewLogSink returns an empty sink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Log appends a line at the given level.
func (s *LogSink) Log(level LogLevel, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	s.mu.Lock()
	s.lines = append(s.lines, LogLine{Level: level, Message: msg})
	s.mu.Unlock()
}

func (s *LogSink) Debugf(format string, args ...any) { s.Log(LevelDebug, format, args...) }
func (s *LogSink) Infof(format string, args ...any)  { s.Log(LevelInfo, format, args...) }
func (s *LogSink) Warnf(format string, args ...any)  { s.Log(LevelWarn, format, args...) }
func (s *LogSink) Errorf(format string, args ...any) { s.Log(LevelError, format, args...) }

// Lines returns a copy of everything logged so far.
func (s *LogSink) Lines() []LogLine {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// lineWriter is an io.Writer that turns a process's stderr into log entries, one
// per complete line; see parseLogLine for level prefixes. A trailing partial line
// is kept until the next write or Flush.
type lineWriter struct {
	sink *LogSink
	buf  []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Flush emits a pending partial line.
func (w *lineWriter) Flush() {
	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
}

func (w *lineWriter) emit(raw string) {
	raw = strings.TrimRight(raw, "\r")
	if strings.TrimSpace(raw) == "" {
		return
	}
	level, msg := parseLogLine(raw)
	w.sink.Log(level, "%s", msg)
}

// parseLogLine splits an optional "[level]" prefix off a raw line.
func parseLogLine(raw string) (LogLevel, string) {
	if strings.HasPrefix(raw, "[") {
		if end := strings.IndexByte(raw, ']'); end > 0 {
			switch LogLevel(strings.ToLower(raw[1:end])) {
			case LevelDebug:
				return LevelDebug, strings.TrimSpace(raw[end+1:])
			case LevelInfo:
				return LevelInfo, strings.TrimSpace(raw[end+1:])
			case LevelWarn, "warning":
				return LevelWarn, strings.TrimSpace(raw[end+1:])
			case LevelError:
				return LevelError, strings.TrimSpace(raw[end+1:])
			}
		}
	}
	return LevelInfo, raw
}
