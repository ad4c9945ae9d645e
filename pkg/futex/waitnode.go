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

package futex

import (
	"waitq.dev/waitq/pkg/block"
)

// waitNode is a single blocked waiter. It lives in the frame of the Wait
// call that created it; the Table links to it but never owns it.
//
// Synchronization:
//
//   - next, prev and key are protected by the Table mutex. next and prev
//     are nil exactly when the node is in no list (a node is fully in a
//     list or fully out).
//
//   - The embedded blocker is touched by the owner (to block) and by the
//     one waker that unlinks the node (to wake). The waker must unlink
//     the node before calling wake: the moment the owner resumes, the
//     node's memory may be reused on another core.
type waitNode struct {
	next *waitNode
	prev *waitNode

	// key identifies the word this node is waiting on. All nodes
	// reachable from one list head share the same key; requeue rewrites
	// it under the Table mutex.
	key Key

	blocker block.Blocker
}

// newWaitNode returns a new unqueued waitNode keyed on key.
func newWaitNode(key Key) *waitNode {
	n := &waitNode{key: key}
	n.blocker.Init()
	return n
}

// inList reports whether n is linked into a list.
func (n *waitNode) inList() bool {
	return n.next != nil
}

// setAsSingleton makes n a list of one.
//
// Preconditions: n is not in any list.
func (n *waitNode) setAsSingleton() {
	n.next = n
	n.prev = n
}

// spliceNodes relinks the successors of a and b, merging two circular
// lists into one or splitting one list into two. The operation is its
// own inverse.
func spliceNodes(a, b *waitNode) {
	an, bn := a.next, b.next
	a.next, b.next = bn, an
	an.prev, bn.prev = b, a
}

// appendList appends the list headed by other to the back of the list
// headed by head. Both lists must be non-empty and disjoint.
func appendList(head, other *waitNode) {
	spliceNodes(head.prev, other.prev)
}

// removeFromList unlinks node from the list headed by head and returns
// the new head, or nil if node was the list's only element. If node is
// the head, the head advances to node's successor.
func removeFromList(head, node *waitNode) *waitNode {
	if node.next == node {
		node.next = nil
		node.prev = nil
		return nil
	}
	if node == head {
		head = node.next
	}
	node.prev.next = node.next
	node.next.prev = node.prev
	node.next = nil
	node.prev = nil
	return head
}

// wakeNodes wakes up to count nodes in FIFO order starting at head and
// returns the head of the un-woken remainder (nil if all were woken)
// and the number woken. Each node is unlinked before its owner is
// resumed.
//
// Preconditions: the Table mutex is held; head != nil; count > 0; every
// node in the list is keyed on key.
func wakeNodes(head *waitNode, count uint32, key Key) (*waitNode, uint32) {
	var woken uint32
	for count > 0 && head != nil {
		node := head
		head = removeFromList(head, node)
		if node.key != key {
			panic("futex: waiter queued under wrong key")
		}
		node.key = 0
		// node may be freed by its owner as soon as it is resumed; it
		// must not be touched after this call.
		node.blocker.Wake()
		woken++
		count--
	}
	return head, woken
}

// removeFromHead carves up to count nodes off the front of the list
// headed by head, re-keys them to newKey, and returns the carved list
// and the head of the remainder (either may be nil). Relative order is
// preserved on both sides.
//
// Preconditions: the Table mutex is held; head != nil; count > 0; every
// node in the list is keyed on oldKey.
func removeFromHead(head *waitNode, count uint32, oldKey, newKey Key) (moved, rest *waitNode) {
	for count > 0 && head != nil {
		node := head
		head = removeFromList(head, node)
		if node.key != oldKey {
			panic("futex: waiter queued under wrong key")
		}
		node.key = newKey
		node.setAsSingleton()
		if moved == nil {
			moved = node
		} else {
			appendList(moved, node)
		}
		count--
	}
	return moved, head
}
