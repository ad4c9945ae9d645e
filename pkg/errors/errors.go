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

// Package errors holds the standardized error definition for waitq.
package errors

// Code classifies a failure surfaced by the wait-queue subsystem.
type Code int

const (
	// OK is the zero Code and is never carried by an Error.
	OK Code = iota

	// InvalidArgument indicates a malformed request, such as a
	// misaligned word address.
	InvalidArgument

	// BadState indicates that an observed word no longer held the value
	// the caller expected at the moment of the atomic check.
	BadState

	// TimedOut indicates that a deadline elapsed while blocked.
	TimedOut

	// Interrupted indicates that the blocked context was killed or
	// suspended externally.
	Interrupted

	// MemoryFault indicates that a word could not be read from the
	// caller's address space at all. It is distinct from BadState.
	MemoryFault
)

// Error represents a failure code with a descriptive message.
type Error struct {
	code    Code
	message string
}

// New creates a new *Error.
func New(code Code, message string) *Error {
	return &Error{
		code:    code,
		message: message,
	}
}

// Error implements error.Error.
func (e *Error) Error() string { return e.message }

// Code returns the underlying Code value.
func (e *Error) Code() Code { return e.code }
