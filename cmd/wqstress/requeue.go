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
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
	"waitq.dev/waitq/pkg/errors/wqerr"
	"waitq.dev/waitq/pkg/futex"
	"waitq.dev/waitq/pkg/log"
	"waitq.dev/waitq/pkg/usermem"
)

// requeueCmd implements subcommands.Command for the "requeue" command:
// a condvar-broadcast pattern where each round wakes one waiter
// directly and moves the rest to a second word before draining it.
type requeueCmd struct {
	waiters int
	rounds  int
}

// Name implements subcommands.Command.Name.
func (*requeueCmd) Name() string {
	return "requeue"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*requeueCmd) Synopsis() string {
	return "drive the wake-and-requeue path under contention"
}

// Usage implements subcommands.Command.Usage.
func (*requeueCmd) Usage() string {
	return `requeue [flags]

Parks waiters on a generation word. Every round bumps the generation,
wakes one waiter directly, moves the rest to a drain word, then wakes
the drain word. Waiters that lose the generation race observe a value
mismatch and catch up on their own.

OPTIONS:
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *requeueCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.waiters, "waiters", 8, "number of parked waiters")
	f.IntVar(&c.rounds, "rounds", 1000, "number of broadcast rounds")
}

// Execute implements subcommands.Command.Execute.
func (c *requeueCmd) Execute(context.Context, *flag.FlagSet, ...any) subcommands.ExitStatus {
	const (
		genWord   usermem.Addr = 0 // current generation
		drainWord usermem.Addr = 4 // waiters are moved here before draining
	)
	tbl := futex.NewTable()
	mem := usermem.NewBytesIO(8)
	rounds := uint32(c.rounds)

	var g errgroup.Group
	for i := 0; i < c.waiters; i++ {
		g.Go(func() error {
			for {
				gen, err := mem.LoadUint32(genWord)
				if err != nil {
					return err
				}
				if gen >= rounds {
					return nil
				}
				// A mismatch just means the generation moved on while
				// we were getting here; reload and go around.
				err = tbl.Wait(mem, genWord, gen, time.Now().Add(30*time.Second), nil)
				if err != nil && !wqerr.Equals(wqerr.ErrBadState, err) {
					return err
				}
			}
		})
	}

	rl := log.BasicRateLimitedLogger(100 * time.Millisecond)
	var direct, drained uint64
	start := time.Now()
	for r := uint32(1); r <= rounds; r++ {
		mem.StoreUint32(genWord, r)

		// Wake one waiter directly and move everyone else to the drain
		// word; anyone who parks after the store fails the value check
		// and catches up without our help.
		n1, err := tbl.Requeue(mem, genWord, 1, r, drainWord, math.MaxUint32)
		if err != nil {
			log.Warningf("Requeue: %v", err)
			return subcommands.ExitFailure
		}
		n2, err := tbl.Wake(drainWord, math.MaxUint32)
		if err != nil {
			log.Warningf("Wake: %v", err)
			return subcommands.ExitFailure
		}
		direct += uint64(n1)
		drained += uint64(n2)
		rl.Debugf("round %d: woke %d directly, drained %d", r, n1, n2)
	}

	if err := g.Wait(); err != nil {
		log.Warningf("waiter failed: %v", err)
		return subcommands.ExitFailure
	}
	elapsed := time.Since(start)

	if !tbl.IsEmpty() {
		log.Warningf("table still has waiters after the final round")
		return subcommands.ExitFailure
	}
	tbl.Release()

	log.Infof("%d rounds with %d waiters in %v: %d woken directly, %d via requeue", c.rounds, c.waiters, elapsed, direct, drained)
	return subcommands.ExitSuccess
}
