package uorb

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonoton/go-uorb/internal/ring"
)

// nodeKey identifies a node in the registry.
type nodeKey struct {
	meta     *Metadata
	instance int
}

// Node is the live object backing one (topic, instance) pair. It owns the
// ring buffer of recent payloads and the generation counter.
//
// A *Node obtained from Find is a read-only view; writes and reads go
// through Advertiser and Subscriber handles.
type Node struct {
	bus      *Bus
	meta     *Metadata
	instance int

	// Guarded by bus.mu.
	advertisers int
	subscribers int

	// mu is the node critical section. Publishers hold it exclusively for
	// one fixed-size copy, a counter increment and a bounded number of
	// non-blocking channel sends. Readers share it for one fixed-size copy.
	mu       sync.RWMutex
	ring     *ring.Ring
	watchers []chan struct{}
	deleted  bool

	lost atomic.Uint64
}

func newNode(b *Bus, meta *Metadata, instance, queueSize int) *Node {
	return &Node{
		bus:      b,
		meta:     meta,
		instance: instance,
		ring:     ring.New(queueSize, int(meta.Size)),
	}
}

// Metadata returns the topic of the node.
func (n *Node) Metadata() *Metadata { return n.meta }

// Instance returns the instance index of the node.
func (n *Node) Instance() int { return n.instance }

// QueueSize returns the number of payloads the node retains.
func (n *Node) QueueSize() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.deleted {
		return 0
	}
	return n.ring.Capacity()
}

// Generation returns how many times the node has been published to.
func (n *Node) Generation() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.deleted {
		return 0
	}
	return n.ring.Generation()
}

// DataValid reports whether the node has been published to at least once.
func (n *Node) DataValid() bool { return n.Generation() > 0 }

// Advertised reports whether any advertiser is attached.
func (n *Node) Advertised() bool {
	n.bus.mu.Lock()
	defer n.bus.mu.Unlock()
	return n.advertisers > 0
}

// SubscriberCount returns the number of live subscriptions.
func (n *Node) SubscriberCount() int {
	n.bus.mu.Lock()
	defer n.bus.mu.Unlock()
	return n.subscribers
}

// Lost returns the total number of messages subscribers of this node have
// lost to overruns.
func (n *Node) Lost() uint64 { return n.lost.Load() }

// write publishes p. It reports false if the node has been deleted.
func (n *Node) write(p []byte) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.deleted {
		return false
	}
	n.ring.Write(p)
	for _, ch := range n.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return true
}

// read copies the payload after generation last into out. If the copied
// generation is the newest one, updated is drained while publishers are
// excluded, so a later publish always leaves it signalled.
func (n *Node) read(last uint64, out []byte, updated chan struct{}) (gen, lost uint64, ok, live bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.deleted {
		return 0, 0, false, false
	}
	gen, lost, ok = n.ring.Next(last, out)
	if !ok || gen == n.ring.Generation() {
		select {
		case <-updated:
		default:
		}
	}
	return gen, lost, ok, true
}

// generation returns the current generation and whether the node is live.
func (n *Node) generation() (uint64, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.deleted {
		return 0, false
	}
	return n.ring.Generation(), true
}

// grow raises the queue size if the node has never been published to.
// It reports false if the node has been deleted.
func (n *Node) grow(queueSize int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.deleted {
		return false
	}
	if queueSize > n.ring.Capacity() {
		n.ring.Resize(queueSize)
	}
	return true
}

func (n *Node) watch(ch chan struct{}) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.deleted {
		return false
	}
	n.watchers = append(n.watchers, ch)
	return true
}

func (n *Node) unwatch(ch chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, w := range n.watchers {
		if w == ch {
			n.watchers = append(n.watchers[:i], n.watchers[i+1:]...)
			return
		}
	}
}

// retire marks the node deleted and releases its ring storage. The caller
// must already have removed it from the registry.
func (n *Node) retire() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = true
	n.ring = nil
	n.watchers = nil
}

// Peek copies the most recent payload into out without a subscription and
// returns its generation. It fails with ErrNoUpdate before the first
// publish and with ErrInvalidHandle once the node is deleted.
func (n *Node) Peek(out []byte) (uint64, error) {
	if len(out) != int(n.meta.Size) {
		return 0, fmt.Errorf("%w: topic %s wants %d bytes, got %d",
			ErrSizeMismatch, n.meta.Name, n.meta.Size, len(out))
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.deleted {
		return 0, fmt.Errorf("%w: node %s/%d was deleted", ErrInvalidHandle, n.meta.Name, n.instance)
	}
	gen, ok := n.ring.Latest(out)
	if !ok {
		return 0, ErrNoUpdate
	}
	return gen, nil
}
