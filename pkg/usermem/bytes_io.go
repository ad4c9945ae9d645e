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

package usermem

import (
	"sync/atomic"
	"unsafe"

	"waitq.dev/waitq/pkg/errors/wqerr"
)

// BytesIO implements IO using a byte slice as the backing address space.
// Besides the loads the table itself performs, it provides the atomic
// stores and compare-and-swaps a userspace synchronization primitive
// needs on its side of the protocol.
type BytesIO struct {
	// Bytes is the backing memory.
	Bytes []byte
}

// NewBytesIO returns a BytesIO backed by size bytes of zeroed memory.
func NewBytesIO(size int) *BytesIO {
	return &BytesIO{Bytes: make([]byte, size)}
}

// rangeCheck returns wqerr.ErrMemoryFault if [addr, addr+n) is outside
// the backing slice. The end of the range is computed with AddLength so
// an address near the top of the address space faults instead of
// wrapping past the bounds check.
func (b *BytesIO) rangeCheck(addr Addr, n int) error {
	end, ok := addr.AddLength(uint64(n))
	if !ok || end > Addr(len(b.Bytes)) {
		return wqerr.ErrMemoryFault
	}
	return nil
}

// LoadUint32 implements IO.LoadUint32.
func (b *BytesIO) LoadUint32(addr Addr) (uint32, error) {
	if err := b.rangeCheck(addr, 4); err != nil {
		return 0, err
	}
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(&b.Bytes[int(addr)]))), nil
}

// StoreUint32 atomically stores val at addr.
func (b *BytesIO) StoreUint32(addr Addr, val uint32) error {
	if err := b.rangeCheck(addr, 4); err != nil {
		return err
	}
	atomic.StoreUint32((*uint32)(unsafe.Pointer(&b.Bytes[int(addr)])), val)
	return nil
}

// SwapUint32 atomically stores new at addr and returns the previous
// value.
func (b *BytesIO) SwapUint32(addr Addr, new uint32) (uint32, error) {
	if err := b.rangeCheck(addr, 4); err != nil {
		return 0, err
	}
	return atomic.SwapUint32((*uint32)(unsafe.Pointer(&b.Bytes[int(addr)])), new), nil
}

// CompareAndSwapUint32 atomically stores new at addr if it currently
// holds old, and returns the value observed before the operation.
func (b *BytesIO) CompareAndSwapUint32(addr Addr, old, new uint32) (uint32, error) {
	if err := b.rangeCheck(addr, 4); err != nil {
		return 0, err
	}
	p := (*uint32)(unsafe.Pointer(&b.Bytes[int(addr)]))
	if atomic.CompareAndSwapUint32(p, old, new) {
		return old, nil
	}
	return atomic.LoadUint32(p), nil
}
