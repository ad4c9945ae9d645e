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

// Package futex provides a wait-queue table for building futex-style
// synchronization primitives: a caller blocks while a memory word still
// holds an expected value, and concurrent callers wake queued waiters or
// move them to another word's queue, in FIFO order.
package futex

import (
	"runtime"
	"sync"
	"time"

	"waitq.dev/waitq/pkg/errors/wqerr"
	"waitq.dev/waitq/pkg/usermem"
)

// Key identifies a futex word within a Table's synchronization domain.
// It is derived from the word's address, not from the value stored
// there; two waiters with the same Key wait on the same word.
type Key uint64

// Target abstracts the memory accesses performed on behalf of a caller.
// A Table only ever loads; all writes to futex words happen on the
// caller's side of the protocol.
type Target = usermem.IO

// keyFor validates addr and derives its Key. The word must be aligned
// to its natural 4-byte boundary.
func keyFor(addr usermem.Addr) (Key, error) {
	if !addr.Aligned4() {
		return 0, wqerr.ErrInvalidArgument
	}
	return Key(addr), nil
}

// Table maps each futex key to the circular list of waiters currently
// blocked on it. A key is present iff its list is non-empty.
//
// A single mutex guards the map and every list reachable from it, so
// Wait, Wake and Requeue critical sections are totally ordered; in
// particular, a value check and the enqueue/dequeue it gates always
// execute in one critical section.
//
// A Table covers one synchronization domain (one address space). Use
// one Table per domain.
type Table struct {
	mu sync.Mutex

	// waiters maps each key to the head of its waiter list. Guarded by
	// mu, as is every node linked from it.
	waiters map[Key]*waitNode
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{
		waiters: make(map[Key]*waitNode),
	}
}

// Wait blocks the caller until a concurrent Wake or Requeue targets
// addr, provided the word at addr still holds val.
//
// The value is re-read through target under the table lock, closing the
// check-then-wait race: a concurrent Wake that already changed the word
// is either ordered before the check (the caller observes the new value
// and returns wqerr.ErrBadState) or after it (the waker observes the
// queued node and can wake it). Read failures propagate verbatim.
//
// A zero deadline means no deadline; a nil interrupt channel means no
// interruption source. Wait returns nil on a wake, wqerr.ErrTimedOut or
// wqerr.ErrInterrupted if the deadline passed or interrupt was closed
// while the caller was still queued. A caller whose deadline races with
// a Wake that has already unlinked it returns nil, not ErrTimedOut: a
// wake targeting N queued waiters must be answered by N successful
// returns, or a mutex built on top will miss wakeups.
func (t *Table) Wait(target Target, addr usermem.Addr, val uint32, deadline time.Time, interrupt <-chan struct{}) error {
	k, err := keyFor(addr)
	if err != nil {
		return err
	}
	n := newWaitNode(k)

	// This function is hot; avoid defer.
	t.mu.Lock()
	if t.waiters == nil {
		t.mu.Unlock()
		panic("futex: table used after Release")
	}
	cur, err := target.LoadUint32(addr)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if cur != val {
		t.mu.Unlock()
		return wqerr.ErrBadState
	}

	n.setAsSingleton()
	if head, ok := t.waiters[k]; ok {
		appendList(head, n)
	} else {
		t.waiters[k] = n
	}

	// The node is visible in the table before the lock is dropped, and
	// the blocker buffers a wake delivered before Block is entered, so
	// dropping the lock here cannot lose a wake: any waker that finds
	// the node in the table can wake it.
	t.mu.Unlock()

	err = n.blocker.Block(deadline, interrupt)
	if err == nil {
		// Whoever woke the node already unlinked it.
		return nil
	}

	t.mu.Lock()
	if !n.inList() {
		// A waker unlinked the node between the blocker giving up and
		// the lock being reacquired. That wake is owed a successful
		// return.
		t.mu.Unlock()
		return nil
	}
	t.unqueueLocked(n)
	t.mu.Unlock()
	return err
}

// unqueueLocked removes n from its list and drops the table entry if n
// was the last waiter on its key. n.key is read under the lock, so a
// node that was requeued since it blocked is removed from the queue it
// currently occupies.
//
// Preconditions: t.mu is locked; n is in a list.
func (t *Table) unqueueLocked(n *waitNode) {
	k := n.key
	if head := removeFromList(t.waiters[k], n); head != nil {
		t.waiters[k] = head
	} else {
		delete(t.waiters, k)
	}
}

// Wake wakes up to count waiters blocked on addr, in the order they
// queued, and returns the number woken. Waking a word nobody waits on
// succeeds with a count of zero; count == 0 is a no-op.
func (t *Table) Wake(addr usermem.Addr, count uint32) (uint32, error) {
	if count == 0 {
		return 0, nil
	}
	k, err := keyFor(addr)
	if err != nil {
		return 0, err
	}

	// Stay on this OS thread for the critical section so the woken
	// goroutines land behind a waker that finishes quickly. This is a
	// scheduling hint; correctness never depends on it.
	runtime.LockOSThread()
	t.mu.Lock()
	head, ok := t.waiters[k]
	if !ok {
		t.mu.Unlock()
		runtime.UnlockOSThread()
		return 0, nil
	}
	delete(t.waiters, k)
	rest, woken := wakeNodes(head, count, k)
	if rest != nil {
		t.waiters[k] = rest
	}
	t.mu.Unlock()
	runtime.UnlockOSThread()
	return woken, nil
}

// Requeue atomically wakes up to wakeCount waiters queued on wakeAddr
// and moves up to requeueCount of those remaining to the queue for
// requeueAddr, provided the word at wakeAddr still holds val. It
// returns the number woken.
//
// requeueAddr must be non-null if requeueCount > 0 and must differ from
// wakeAddr; both addresses must be word-aligned. A wakeCount of zero
// wakes nobody and only moves. Like Wake, requeueing from a word nobody
// waits on succeeds.
func (t *Table) Requeue(target Target, wakeAddr usermem.Addr, wakeCount uint32, val uint32, requeueAddr usermem.Addr, requeueCount uint32) (uint32, error) {
	wakeKey, err := keyFor(wakeAddr)
	if err != nil {
		return 0, err
	}
	if requeueCount > 0 && requeueAddr == 0 {
		return 0, wqerr.ErrInvalidArgument
	}
	var requeueKey Key
	if requeueAddr != 0 {
		requeueKey, err = keyFor(requeueAddr)
		if err != nil {
			return 0, err
		}
		if requeueKey == wakeKey {
			return 0, wqerr.ErrInvalidArgument
		}
	}

	t.mu.Lock()
	cur, err := target.LoadUint32(wakeAddr)
	if err != nil {
		t.mu.Unlock()
		return 0, err
	}
	if cur != val {
		t.mu.Unlock()
		return 0, wqerr.ErrBadState
	}

	// Value checked (the read may fault, so the thread pin waits until
	// here); the rest of the critical section only shuffles lists.
	runtime.LockOSThread()

	head, ok := t.waiters[wakeKey]
	if !ok {
		t.mu.Unlock()
		runtime.UnlockOSThread()
		return 0, nil
	}
	delete(t.waiters, wakeKey)

	var woken uint32
	if wakeCount > 0 {
		head, woken = wakeNodes(head, wakeCount, wakeKey)
	}

	if head != nil && requeueCount > 0 {
		var moved *waitNode
		moved, head = removeFromHead(head, requeueCount, wakeKey, requeueKey)
		if moved != nil {
			if existing, ok := t.waiters[requeueKey]; ok {
				appendList(existing, moved)
			} else {
				t.waiters[requeueKey] = moved
			}
		}
	}

	if head != nil {
		t.waiters[wakeKey] = head
	}
	t.mu.Unlock()
	runtime.UnlockOSThread()
	return woken, nil
}

// IsEmpty reports whether no waiters are queued.
func (t *Table) IsEmpty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters) == 0
}

// Release retires the Table at the end of its domain's life. All
// waiters must have drained; a queued waiter at teardown means its
// owning context outlived the domain. Waiting on a released table
// panics.
func (t *Table) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.waiters) != 0 {
		panic("futex: table released with queued waiters")
	}
	t.waiters = nil
}
