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

// Package usermem governs access to the memory of the synchronization
// domain on whose behalf the wait-queue table operates. The "addresses"
// used here need not be real addresses; they may be offsets into a
// mapped region, indices into an array, or anything else an IO
// implementation can resolve.
package usermem

// Addr represents the address of a word in the caller's address space.
type Addr uintptr

// Aligned4 reports whether a falls on the natural boundary of a 32-bit
// word.
func (a Addr) Aligned4() bool {
	return a&3 == 0
}

// AddLength returns a + length and whether the sum did not wrap. The
// second condition matters when uintptr is narrower than 64 bits.
func (a Addr) AddLength(length uint64) (end Addr, ok bool) {
	end = a + Addr(length)
	ok = end >= a && length <= uint64(^Addr(0))
	return
}

// IO provides the memory accesses the wait-queue table performs on
// behalf of a caller.
type IO interface {
	// LoadUint32 atomically loads the 32-bit word at addr.
	//
	// If the word cannot be read at all, LoadUint32 returns
	// wqerr.ErrMemoryFault or an implementation-specific error; such
	// errors are propagated to the caller verbatim and are never
	// mistaken for a value mismatch.
	LoadUint32(addr Addr) (uint32, error)
}
