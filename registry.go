package uorb

import (
	"fmt"

	"go.uber.org/zap"
)

// The registry maps (metadata, instance) to nodes. Every function here
// expects b.mu to be held and never takes a node lock: node locks are only
// acquired after the registry lock has been released.

func (b *Bus) findLocked(meta *Metadata, instance int) *Node {
	return b.nodes[nodeKey{meta, instance}]
}

// findOrCreateLocked returns the node for the exact instance, creating it
// with queueSize if it does not exist yet.
func (b *Bus) findOrCreateLocked(meta *Metadata, instance, queueSize int) (n *Node, created bool, err error) {
	if n := b.findLocked(meta, instance); n != nil {
		return n, false, nil
	}
	if len(b.nodes) >= b.cfg.MaxNodes {
		return nil, false, fmt.Errorf("%w: registry holds %d nodes, creating %s/%d",
			ErrResourceExhausted, len(b.nodes), meta.Name, instance)
	}
	n = newNode(b, meta, instance, queueSize)
	b.nodes[nodeKey{meta, instance}] = n
	b.log.Debug("node created",
		zap.String("topic", meta.Name),
		zap.Int("instance", instance),
		zap.Int("queue_size", queueSize))
	return n, true, nil
}

// allocateInstanceLocked returns the lowest instance of meta that has no
// live advertiser, creating a node for the lowest unused index when every
// existing instance is advertised.
func (b *Bus) allocateInstanceLocked(meta *Metadata, queueSize int) (*Node, error) {
	free := -1
	for i := 0; i < b.cfg.MaxInstances; i++ {
		n := b.findLocked(meta, i)
		if n == nil {
			if free < 0 {
				free = i
			}
			continue
		}
		if n.advertisers == 0 {
			return n, nil
		}
	}
	if free < 0 {
		return nil, fmt.Errorf("%w: all %d instances of %s are advertised",
			ErrResourceExhausted, b.cfg.MaxInstances, meta.Name)
	}
	n, _, err := b.findOrCreateLocked(meta, free, queueSize)
	return n, err
}

// deleteLocked removes n from the registry. Unless force is set it fails
// with ErrBusy while n has advertisers or subscribers. The caller retires
// the node after releasing b.mu.
func (b *Bus) deleteLocked(n *Node, force bool) error {
	key := nodeKey{n.meta, n.instance}
	if b.nodes[key] != n {
		return fmt.Errorf("%w: node %s/%d is not registered", ErrInvalidHandle, n.meta.Name, n.instance)
	}
	if !force && (n.advertisers > 0 || n.subscribers > 0) {
		return fmt.Errorf("%w: node %s/%d has %d advertisers and %d subscribers",
			ErrBusy, n.meta.Name, n.instance, n.advertisers, n.subscribers)
	}
	delete(b.nodes, key)
	b.log.Debug("node deleted",
		zap.String("topic", n.meta.Name),
		zap.Int("instance", n.instance),
		zap.Bool("force", force))
	return nil
}

// idleLocked reports whether eager cleanup should delete n.
func (b *Bus) idleLocked(n *Node) bool {
	return b.cfg.EagerCleanup && n.advertisers == 0 && n.subscribers == 0
}
