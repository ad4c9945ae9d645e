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

// Package block provides the primitive a queued waiter suspends on: a
// one-shot wake slot with support for an absolute deadline and external
// interruption.
package block

import (
	"time"

	"waitq.dev/waitq/pkg/errors/wqerr"
)

// A Blocker suspends its owner until it is woken, its deadline passes,
// or it is interrupted.
//
// A Blocker is touched by at most two parties across one wait: the
// owner, which calls Block, and the single waker that dequeued the
// owner, which calls Wake. The wake slot is buffered, so a Wake
// delivered between the owner publishing itself and entering Block is
// never lost; this is what lets a caller enqueue under a lock, drop the
// lock, and then block.
type Blocker struct {
	// c carries the wake. Capacity 1: at most one wake is ever issued
	// per Block, so the send never blocks the waker.
	c chan struct{}
}

// Init makes b ready to block. It must be called before any other
// method and must not be called again.
func (b *Blocker) Init() {
	b.c = make(chan struct{}, 1)
}

// Block suspends the caller until Wake is called, deadline passes, or
// interrupt is closed. A zero deadline means no deadline; a nil
// interrupt channel means no interruption source.
//
// Block returns nil on a wake, wqerr.ErrTimedOut on deadline expiry and
// wqerr.ErrInterrupted on interruption. A wake delivered before Block
// is entered wins over an already-expired deadline.
func (b *Blocker) Block(deadline time.Time, interrupt <-chan struct{}) error {
	select {
	case <-b.c:
		return nil
	default:
	}

	if deadline.IsZero() {
		select {
		case <-b.c:
			return nil
		case <-interrupt:
			return wqerr.ErrInterrupted
		}
	}

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-b.c:
		return nil
	case <-timer.C:
		return wqerr.ErrTimedOut
	case <-interrupt:
		return wqerr.ErrInterrupted
	}
}

// Wake resumes the owner. It must be called at most once per Block and
// never blocks.
func (b *Blocker) Wake() {
	b.c <- struct{}{}
}

// Pending reports whether a wake has been delivered but not yet
// consumed by Block.
func (b *Blocker) Pending() bool {
	return len(b.c) != 0
}
