// Copyright 2025 The Agentspace Neo4j Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Levels for logging, ordered by increasing severity.
const (
	Debug = "DEBUG"
	Info  = "INFO"
	Warn  = "WARN"
	Error = "ERROR"
)

// Logger is the interface used throughout the project for logging.
type Logger interface {
	// DebugContext is for reporting additional information about internal operations.
	DebugContext(ctx context.Context, format string, args ...interface{})
	// InfoContext is for reporting informational messages.
	InfoContext(ctx context.Context, format string, args ...interface{})
	// WarnContext is for reporting warning messages.
	WarnContext(ctx context.Context, format string, args ...interface{})
	// ErrorContext is for reporting errors.
	ErrorContext(ctx context.Context, format string, args ...interface{})
}

// SeverityToLevel converts a severity string into a slog Level.
func SeverityToLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case Debug:
		return slog.LevelDebug, nil
	case Info:
		return slog.LevelInfo, nil
	case Warn:
		return slog.LevelWarn, nil
	case Error:
		return slog.LevelError, nil
	default:
		return slog.Level(-5), fmt.Errorf("invalid log level")
	}
}

// StdLogger is the standard logger that writes plain text lines.
type StdLogger struct {
	outLogger *slog.Logger
	errLogger *slog.Logger
}

// NewStdLogger creates a Logger that uses out and err for messages.
// Warnings and errors go to errW, everything else to outW.
func NewStdLogger(outW, errW io.Writer, logLevel string) (Logger, error) {
	//Set log level
	var programLevel = new(slog.LevelVar)
	slogLevel, err := SeverityToLevel(logLevel)
	if err != nil {
		return nil, err
	}
	programLevel.Set(slogLevel)

	handlerOptions := &slog.HandlerOptions{Level: programLevel}

	return &StdLogger{
		outLogger: slog.New(slog.NewTextHandler(outW, handlerOptions)),
		errLogger: slog.New(slog.NewTextHandler(errW, handlerOptions)),
	}, nil
}

// DebugContext logs debug messages.
func (sl *StdLogger) DebugContext(ctx context.Context, format string, args ...interface{}) {
	sl.outLogger.DebugContext(ctx, fmt.Sprintf(format, args...))
}

// InfoContext logs informational messages.
func (sl *StdLogger) InfoContext(ctx context.Context, format string, args ...interface{}) {
	sl.outLogger.InfoContext(ctx, fmt.Sprintf(format, args...))
}

// WarnContext logs warning messages.
func (sl *StdLogger) WarnContext(ctx context.Context, format string, args ...interface{}) {
	sl.errLogger.WarnContext(ctx, fmt.Sprintf(format, args...))
}

// ErrorContext logs error messages.
func (sl *StdLogger) ErrorContext(ctx context.Context, format string, args ...interface{}) {
	sl.errLogger.ErrorContext(ctx, fmt.Sprintf(format, args...))
}

// StructuredLogger is a logger that writes JSON lines.
type StructuredLogger struct {
	outLogger *slog.Logger
	errLogger *slog.Logger
}

// NewStructuredLogger creates a Logger that emits structured JSON records.
func NewStructuredLogger(outW, errW io.Writer, logLevel string) (Logger, error) {
	//Set log level
	var programLevel = new(slog.LevelVar)
	slogLevel, err := SeverityToLevel(logLevel)
	if err != nil {
		return nil, err
	}
	programLevel.Set(slogLevel)

	replace := func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.LevelKey:
			a.Key = "severity"
		case slog.MessageKey:
			a.Key = "message"
		case slog.TimeKey:
			a.Key = "timestamp"
		}
		return a
	}
	handlerOptions := &slog.HandlerOptions{Level: programLevel, ReplaceAttr: replace}

	return &StructuredLogger{
		outLogger: slog.New(slog.NewJSONHandler(outW, handlerOptions)),
		errLogger: slog.New(slog.NewJSONHandler(errW, handlerOptions)),
	}, nil
}

// DebugContext logs debug messages.
func (sl *StructuredLogger) DebugContext(ctx context.Context, format string, args ...interface{}) {
	sl.outLogger.DebugContext(ctx, fmt.Sprintf(format, args...))
}

// InfoContext logs informational messages.
func (sl *StructuredLogger) InfoContext(ctx context.Context, format string, args ...interface{}) {
	sl.outLogger.InfoContext(ctx, fmt.Sprintf(format, args...))
}

// WarnContext logs warning messages.
func (sl *StructuredLogger) WarnContext(ctx context.Context, format string, args ...interface{}) {
	sl.errLogger.WarnContext(ctx, fmt.Sprintf(format, args...))
}

// ErrorContext logs error messages.
func (sl *StructuredLogger) ErrorContext(ctx context.Context, format string, args ...interface{}) {
	sl.errLogger.ErrorContext(ctx, fmt.Sprintf(format, args...))
}
