// Copyright 2026 The Waitq Authors.
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

// Package log provides leveled logging for the wait-queue subsystem's
// drivers and embedders. The table's hot paths do not log.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Level is the log level.
type Level uint32

const (
	// Warning indicates a problem.
	Warning Level = iota

	// Info indicates a normal, operational message.
	Info

	// Debug indicates a high-volume diagnostic message.
	Debug
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case Warning:
		return "Warning"
	case Info:
		return "Info"
	case Debug:
		return "Debug"
	default:
		return fmt.Sprintf("Invalid level: %d", l)
	}
}

// Emitter is the final destination for log lines.
type Emitter interface {
	// Emit emits the given log statement. depth is the number of frames
	// between the caller of Emit and the original log call site.
	Emit(depth int, level Level, timestamp time.Time, format string, v ...any)
}

// Writer writes log lines to an underlying io.Writer, serializing
// concurrent writers.
type Writer struct {
	// Next is the underlying writer.
	Next io.Writer

	// mu protects Next.
	mu sync.Mutex
}

// Write implements io.Writer.
func (l *Writer) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Next.Write(b)
}

// TextEmitter emits a compact single-line format: a level letter, a
// timestamp, and the message.
type TextEmitter struct {
	*Writer
}

// Emit implements Emitter.Emit.
func (e TextEmitter) Emit(_ int, level Level, timestamp time.Time, format string, v ...any) {
	prefix := byte('?')
	switch level {
	case Warning:
		prefix = 'W'
	case Info:
		prefix = 'I'
	case Debug:
		prefix = 'D'
	}
	fmt.Fprintf(e.Writer, "%c%s] %s\n", prefix, timestamp.Format("0102 15:04:05.000000"), fmt.Sprintf(format, v...))
}

// Logger is a high-level logging interface. It is in reality a subset
// of BasicLogger, but it can be implemented by wrappers such as the
// rate-limited logger.
type Logger interface {
	// Debugf logs a debug statement.
	Debugf(format string, v ...any)

	// Infof logs an informational statement.
	Infof(format string, v ...any)

	// Warningf logs a warning.
	Warningf(format string, v ...any)

	// IsLogging returns true iff messages at the given level are being
	// logged.
	IsLogging(level Level) bool
}

// BasicLogger is the standard implementation of Logger: an Emitter
// gated by a Level.
type BasicLogger struct {
	Level
	Emitter
}

// Debugf implements Logger.Debugf.
func (l *BasicLogger) Debugf(format string, v ...any) {
	if l.IsLogging(Debug) {
		l.Emit(1, Debug, time.Now(), format, v...)
	}
}

// Infof implements Logger.Infof.
func (l *BasicLogger) Infof(format string, v ...any) {
	if l.IsLogging(Info) {
		l.Emit(1, Info, time.Now(), format, v...)
	}
}

// Warningf implements Logger.Warningf.
func (l *BasicLogger) Warningf(format string, v ...any) {
	if l.IsLogging(Warning) {
		l.Emit(1, Warning, time.Now(), format, v...)
	}
}

// IsLogging implements Logger.IsLogging.
func (l *BasicLogger) IsLogging(level Level) bool {
	return atomic.LoadUint32((*uint32)(&l.Level)) >= uint32(level)
}

// SetLevel sets the logging level.
func (l *BasicLogger) SetLevel(level Level) {
	atomic.StoreUint32((*uint32)(&l.Level), uint32(level))
}

// logMu protects the global logger below.
var logMu sync.Mutex

// log is the global logger.
var log atomic.Pointer[BasicLogger]

// Log retrieves the global logger.
func Log() *BasicLogger {
	if l := log.Load(); l != nil {
		return l
	}

	// Slow path: initialize the default logger exactly once.
	logMu.Lock()
	defer logMu.Unlock()
	if l := log.Load(); l != nil {
		return l
	}
	l := &BasicLogger{
		Level:   Info,
		Emitter: TextEmitter{&Writer{Next: os.Stderr}},
	}
	log.Store(l)
	return l
}

// SetTarget sets the log target for the global logger. The level is
// preserved.
func SetTarget(target Emitter) {
	logMu.Lock()
	defer logMu.Unlock()
	oldLevel := Log().Level
	log.Store(&BasicLogger{Level: oldLevel, Emitter: target})
}

// SetLevel sets the log level for the global logger.
func SetLevel(newLevel Level) {
	Log().SetLevel(newLevel)
}

// Debugf logs to the global logger.
func Debugf(format string, v ...any) {
	Log().Debugf(format, v...)
}

// Infof logs to the global logger.
func Infof(format string, v ...any) {
	Log().Infof(format, v...)
}

// Warningf logs to the global logger.
func Warningf(format string, v ...any) {
	Log().Warningf(format, v...)
}

// IsLogging returns whether the global logger is logging at the given
// level.
func IsLogging(level Level) bool {
	return Log().IsLogging(level)
}
