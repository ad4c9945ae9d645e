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

// Package wqerr defines the canonical error values returned by the
// wait-queue subsystem.
package wqerr

import (
	"waitq.dev/waitq/pkg/errors"
)

var (
	// ErrInvalidArgument is returned for malformed requests: a misaligned
	// word address, a null requeue address with a nonzero requeue count,
	// or identical wake and requeue addresses.
	ErrInvalidArgument = errors.New(errors.InvalidArgument, "invalid argument")

	// ErrBadState is returned by Wait and Requeue when the target word no
	// longer holds the caller-supplied value at the moment of the atomic
	// check.
	ErrBadState = errors.New(errors.BadState, "futex value mismatch")

	// ErrTimedOut is returned by Wait when the deadline elapsed and the
	// waiter was still queued when it went back to check.
	ErrTimedOut = errors.New(errors.TimedOut, "deadline elapsed")

	// ErrInterrupted is returned by Wait when the blocked context was
	// killed or suspended and the waiter was still queued when it went
	// back to check.
	ErrInterrupted = errors.New(errors.Interrupted, "wait interrupted")

	// ErrMemoryFault is returned when a word cannot be read from the
	// caller's address space. It is never conflated with ErrBadState.
	ErrMemoryFault = errors.New(errors.MemoryFault, "memory fault")
)

// Equals reports whether err represents the same failure as e. It
// compares codes rather than identities so that wrapped or
// implementation-specific errors with a taxonomy code still match.
func Equals(e *errors.Error, err error) bool {
	e2, ok := err.(*errors.Error)
	if !ok {
		return false
	}
	return e.Code() == e2.Code()
}
