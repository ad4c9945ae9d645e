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
	"testing"

	"github.com/google/go-cmp/cmp"
)

// makeList builds a circular list of len(keys) fresh nodes, in order,
// and returns the nodes and the head.
func makeList(keys ...Key) ([]*waitNode, *waitNode) {
	var nodes []*waitNode
	var head *waitNode
	for _, k := range keys {
		n := newWaitNode(k)
		n.setAsSingleton()
		if head == nil {
			head = n
		} else {
			appendList(head, n)
		}
		nodes = append(nodes, n)
	}
	return nodes, head
}

// listKeys walks the circular list from head and collects each node's
// key in order. It fails the test if the links are inconsistent or the
// walk does not terminate.
func listKeys(t *testing.T, head *waitNode) []Key {
	t.Helper()
	if head == nil {
		return nil
	}
	var keys []Key
	n := head
	for i := 0; ; i++ {
		if i > 1000 {
			t.Fatal("list walk did not terminate")
		}
		if n.next.prev != n || n.prev.next != n {
			t.Fatalf("inconsistent links at node %d", i)
		}
		keys = append(keys, n.key)
		n = n.next
		if n == head {
			break
		}
	}
	return keys
}

func TestSingletonLinks(t *testing.T) {
	n := newWaitNode(1)
	if n.inList() {
		t.Error("fresh node reported in list")
	}
	n.setAsSingleton()
	if n.next != n || n.prev != n {
		t.Error("singleton does not link to itself")
	}
	if head := removeFromList(n, n); head != nil {
		t.Errorf("removing the only node: got head %p, want nil", head)
	}
	if n.inList() {
		t.Error("removed node still reports in list")
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	_, head := makeList(1, 1, 1)
	_, other := makeList(1, 1)
	appendList(head, other)
	if got := listKeys(t, head); len(got) != 5 {
		t.Errorf("merged list has %d nodes, want 5", len(got))
	}
}

func TestSpliceSelfInverse(t *testing.T) {
	nodesA, headA := makeList(1, 1, 1)
	nodesB, headB := makeList(1, 1)
	spliceNodes(headA.prev, headB.prev)
	if got := listKeys(t, headA); len(got) != 5 {
		t.Fatalf("after splice: %d nodes reachable, want 5", len(got))
	}
	// Splicing the same boundary nodes again must undo the merge.
	spliceNodes(nodesA[2], nodesB[1])
	if got := listKeys(t, headA); len(got) != 3 {
		t.Errorf("after second splice: %d nodes reachable from headA, want 3", len(got))
	}
	if got := listKeys(t, headB); len(got) != 2 {
		t.Errorf("after second splice: %d nodes reachable from headB, want 2", len(got))
	}
}

func TestRemoveFromList(t *testing.T) {
	nodes, head := makeList(1, 1, 1)

	// Removing the head advances it.
	head = removeFromList(head, nodes[0])
	if head != nodes[1] {
		t.Fatal("head did not advance to its successor")
	}
	if nodes[0].inList() {
		t.Error("removed head still reports in list")
	}

	// Removing a non-head node keeps the head.
	head = removeFromList(head, nodes[2])
	if head != nodes[1] {
		t.Fatal("head changed while removing a non-head node")
	}
	if got := listKeys(t, head); len(got) != 1 {
		t.Errorf("list has %d nodes, want 1", len(got))
	}
}

func TestWakeNodesFIFO(t *testing.T) {
	nodes, head := makeList(7, 7, 7, 7)
	rest, woken := wakeNodes(head, 2, 7)
	if woken != 2 {
		t.Errorf("woke %d nodes, want 2", woken)
	}
	for i, n := range nodes[:2] {
		if !n.blocker.Pending() {
			t.Errorf("node %d not woken", i)
		}
		if n.inList() {
			t.Errorf("woken node %d still linked", i)
		}
	}
	for i, n := range nodes[2:] {
		if n.blocker.Pending() {
			t.Errorf("node %d woken out of turn", i+2)
		}
	}
	if rest != nodes[2] {
		t.Error("remainder head is not the oldest surviving node")
	}
	if got := listKeys(t, rest); len(got) != 2 {
		t.Errorf("remainder has %d nodes, want 2", len(got))
	}
}

func TestWakeNodesCountExceedsLength(t *testing.T) {
	nodes, head := makeList(3, 3)
	rest, woken := wakeNodes(head, 10, 3)
	if rest != nil {
		t.Error("remainder non-nil after waking past the end")
	}
	if woken != 2 {
		t.Errorf("woke %d nodes, want 2", woken)
	}
	for i, n := range nodes {
		if !n.blocker.Pending() {
			t.Errorf("node %d not woken", i)
		}
	}
}

func TestRemoveFromHeadRekeys(t *testing.T) {
	nodes, head := makeList(5, 5, 5, 5)
	moved, rest := removeFromHead(head, 2, 5, 9)
	if got := listKeys(t, moved); cmp.Diff([]Key{9, 9}, got) != "" {
		t.Errorf("moved list keys: got %v, want [9 9]", got)
	}
	if got := listKeys(t, rest); cmp.Diff([]Key{5, 5}, got) != "" {
		t.Errorf("remainder keys: got %v, want [5 5]", got)
	}
	if moved != nodes[0] || moved.next != nodes[1] {
		t.Error("carved list does not preserve FIFO order")
	}
	if rest != nodes[2] {
		t.Error("remainder head is not the oldest surviving node")
	}
}

func TestRemoveFromHeadConsumesAll(t *testing.T) {
	_, head := makeList(5, 5)
	moved, rest := removeFromHead(head, 4, 5, 9)
	if rest != nil {
		t.Error("remainder non-nil after carving past the end")
	}
	if got := listKeys(t, moved); len(got) != 2 {
		t.Errorf("moved list has %d nodes, want 2", len(got))
	}
}
