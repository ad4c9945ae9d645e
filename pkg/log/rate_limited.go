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
	"time"

	"golang.org/x/time/rate"
)

// throttled wraps a Logger and silently drops messages that exceed its
// rate budget. Useful on per-iteration log sites in tight loops, where
// every message is shaped the same and a sample is as good as the
// stream.
type throttled struct {
	sink   Logger
	budget *rate.Limiter
}

func (t *throttled) Debugf(format string, v ...any) {
	if t.budget.Allow() {
		t.sink.Debugf(format, v...)
	}
}

func (t *throttled) Infof(format string, v ...any) {
	if t.budget.Allow() {
		t.sink.Infof(format, v...)
	}
}

func (t *throttled) Warningf(format string, v ...any) {
	if t.budget.Allow() {
		t.sink.Warningf(format, v...)
	}
}

// IsLogging defers to the wrapped logger; throttling drops messages but
// never changes which levels are enabled.
func (t *throttled) IsLogging(level Level) bool {
	return t.sink.IsLogging(level)
}

// BasicRateLimitedLogger returns a Logger that emits to the global
// logger at most once per every.
func BasicRateLimitedLogger(every time.Duration) Logger {
	return RateLimitedLogger(Log(), every)
}

// RateLimitedLogger returns a Logger that emits to logger at most once
// per every. Messages over the budget are dropped, not delayed.
func RateLimitedLogger(logger Logger, every time.Duration) Logger {
	return &throttled{
		sink:   logger,
		budget: rate.NewLimiter(rate.Every(every), 1),
	}
}
