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

package log

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"
)

type testEmitter struct {
	lines []string
}

func (e *testEmitter) Emit(_ int, _ Level, _ time.Time, format string, v ...any) {
	e.lines = append(e.lines, fmt.Sprintf(format, v...))
}

func TestLevelGating(t *testing.T) {
	e := &testEmitter{}
	l := &BasicLogger{Level: Warning, Emitter: e}

	l.Debugf("dropped")
	l.Infof("dropped")
	l.Warningf("kept")
	if len(e.lines) != 1 || e.lines[0] != "kept" {
		t.Errorf("got lines %q, want only %q", e.lines, "kept")
	}

	l.SetLevel(Debug)
	if !l.IsLogging(Debug) {
		t.Error("IsLogging(Debug) false after SetLevel(Debug)")
	}
	l.Debugf("now kept")
	if len(e.lines) != 2 {
		t.Errorf("got %d lines, want 2", len(e.lines))
	}
}

func TestTextEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := TextEmitter{&Writer{Next: &buf}}
	e.Emit(0, Info, time.Now(), "queue depth %d", 3)
	out := buf.String()
	if !strings.HasPrefix(out, "I") {
		t.Errorf("line %q does not carry the info prefix", out)
	}
	if !strings.Contains(out, "queue depth 3") {
		t.Errorf("line %q does not contain the message", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("line %q is not newline-terminated", out)
	}
}

func TestRateLimitedLogger(t *testing.T) {
	e := &testEmitter{}
	l := RateLimitedLogger(&BasicLogger{Level: Info, Emitter: e}, time.Hour)
	for i := 0; i < 10; i++ {
		l.Infof("spam %d", i)
	}
	if len(e.lines) != 1 {
		t.Errorf("got %d lines, want 1 within the rate limit window", len(e.lines))
	}
	if !l.IsLogging(Info) {
		t.Error("rate limiting must not affect IsLogging")
	}
}

func TestLevelString(t *testing.T) {
	for level, want := range map[Level]string{Warning: "Warning", Info: "Info", Debug: "Debug"} {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}
