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

package main

import (
	"context"
	"flag"
	"math"
	"runtime"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
	"waitq.dev/waitq/pkg/errors/wqerr"
	"waitq.dev/waitq/pkg/futex"
	"waitq.dev/waitq/pkg/log"
	"waitq.dev/waitq/pkg/usermem"
)

// futexMutex is a userspace mutex built on the wait-queue table: the
// word holds 0 when unlocked and 1 when locked.
type futexMutex struct {
	addr usermem.Addr
	mem  *usermem.BytesIO
	tbl  *futex.Table
}

func (m *futexMutex) lock() error {
	for {
		old, err := m.mem.CompareAndSwapUint32(m.addr, 0, 1)
		if err != nil {
			return err
		}
		if old == 0 {
			return nil
		}

		// Contended; park until the word leaves the locked state.
		// ErrBadState means it already has, so retry the acquire.
		err = m.tbl.Wait(m.mem, m.addr, 1, time.Time{}, nil)
		if err != nil && !wqerr.Equals(wqerr.ErrBadState, err) {
			return err
		}
	}
}

func (m *futexMutex) unlock() error {
	if err := m.mem.StoreUint32(m.addr, 0); err != nil {
		return err
	}
	_, err := m.tbl.Wake(m.addr, math.MaxUint32)
	return err
}

// mutexCmd implements subcommands.Command for the "mutex" command.
type mutexCmd struct {
	workers int
	loops   int
}

// Name implements subcommands.Command.Name.
func (*mutexCmd) Name() string {
	return "mutex"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*mutexCmd) Synopsis() string {
	return "hammer a futex-backed mutex from many workers"
}

// Usage implements subcommands.Command.Usage.
func (*mutexCmd) Usage() string {
	return `mutex [flags]

Builds a userspace mutex on the wait-queue table and has every worker
acquire and release it in a tight loop, checking that the critical
section actually excluded.

OPTIONS:
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *mutexCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.workers, "workers", 8, "number of concurrent workers")
	f.IntVar(&c.loops, "loops", 10000, "lock/unlock iterations per worker")
}

// Execute implements subcommands.Command.Execute.
func (c *mutexCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	tbl := futex.NewTable()
	mem := usermem.NewBytesIO(4)
	m := &futexMutex{addr: 0, mem: mem, tbl: tbl}

	counter := 0 // guarded by m
	start := time.Now()
	var g errgroup.Group
	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for j := 0; j < c.loops; j++ {
				if err := m.lock(); err != nil {
					return err
				}
				counter++
				runtime.Gosched()
				if err := m.unlock(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warningf("worker failed: %v", err)
		return subcommands.ExitFailure
	}
	elapsed := time.Since(start)

	if want := c.workers * c.loops; counter != want {
		log.Warningf("counter is %d, want %d: mutual exclusion violated", counter, want)
		return subcommands.ExitFailure
	}
	if !tbl.IsEmpty() {
		log.Warningf("table still has waiters after all workers finished")
		return subcommands.ExitFailure
	}
	tbl.Release()

	total := c.workers * c.loops
	log.Infof("%d workers x %d loops in %v (%.0f locks/s)", c.workers, c.loops, elapsed, float64(total)/elapsed.Seconds())
	return subcommands.ExitSuccess
}
