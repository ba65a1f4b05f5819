package uorb

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnyInstance asks Advertise to pick the lowest instance that has no
// advertiser.
const AnyInstance = -1

// testHookClaimed, if non-nil, runs after Advertise or Subscribe has
// claimed a node and released the registry lock.
var testHookClaimed func()

// Bus is the topic registry together with the handle layer. All methods
// are safe for concurrent use.
type Bus struct {
	cfg   Config
	log   *zap.Logger
	clock clock.Clock

	mu     sync.Mutex // registry lock
	nodes  map[nodeKey]*Node
	closed bool
}

// New creates a bus.
func New(cfg Config) (*Bus, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	b := &Bus{
		cfg:   cfg,
		log:   cfg.Logger,
		clock: cfg.Clock,
		nodes: make(map[nodeKey]*Node),
	}
	b.log.Debug("bus created",
		zap.Int("max_nodes", cfg.MaxNodes),
		zap.Int("max_instances", cfg.MaxInstances),
		zap.Bool("single_writer", cfg.SingleWriter),
		zap.Bool("eager_cleanup", cfg.EagerCleanup))
	return b, nil
}

func (b *Bus) checkQueueSize(queueSize int) error {
	if queueSize < 1 || queueSize > b.cfg.MaxQueueSize {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidQueueSize, queueSize, b.cfg.MaxQueueSize)
	}
	return nil
}

func (b *Bus) checkInstance(instance int) error {
	if instance < 0 || instance >= b.cfg.MaxInstances {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidInstance, instance, b.cfg.MaxInstances)
	}
	return nil
}

// Advertise attaches a publisher to a topic instance, creating the node if
// needed. Pass AnyInstance to let the bus pick the lowest instance without
// an advertiser; the chosen index is available from Advertiser.Instance.
//
// If initial is non-nil it is published before Advertise returns.
func (b *Bus) Advertise(meta *Metadata, instance, queueSize int, initial []byte) (*Advertiser, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if err := b.checkQueueSize(queueSize); err != nil {
		return nil, err
	}
	if instance != AnyInstance {
		if err := b.checkInstance(instance); err != nil {
			return nil, err
		}
	}
	if initial != nil && len(initial) != int(meta.Size) {
		return nil, fmt.Errorf("%w: topic %s wants %d bytes, got %d", ErrSizeMismatch, meta.Name, meta.Size, len(initial))
	}

	n, err := func() (*Node, error) {
		b.mu.Lock()
		defer b.mu.Unlock()

		if b.closed {
			return nil, ErrBusClosed
		}
		var n *Node
		if instance == AnyInstance {
			var err error
			if n, err = b.allocateInstanceLocked(meta, queueSize); err != nil {
				return nil, err
			}
		} else {
			var err error
			if n, _, err = b.findOrCreateLocked(meta, instance, queueSize); err != nil {
				return nil, err
			}
			if b.cfg.SingleWriter && n.advertisers > 0 {
				return nil, fmt.Errorf("%w: %s/%d", ErrAlreadyAdvertised, meta.Name, instance)
			}
		}
		n.advertisers++
		return n, nil
	}()
	if err != nil {
		return nil, err
	}
	if testHookClaimed != nil {
		testHookClaimed()
	}
	if !n.grow(queueSize) {
		// Close retired the node between the two critical sections.
		b.releaseAdvertiser(n)
		return nil, ErrBusClosed
	}

	adv := &Advertiser{
		id:   uuid.New(),
		bus:  b,
		node: n,
	}
	b.log.Debug("advertised",
		zap.String("topic", meta.Name),
		zap.Int("instance", n.instance),
		zap.Stringer("handle", adv.id))

	if initial != nil {
		if err := adv.Publish(initial); err != nil {
			_ = adv.Unadvertise()
			if errors.Is(err, ErrInvalidHandle) {
				// The claim keeps Delete and eager cleanup away, so only
				// Close can have retired the node.
				return nil, ErrBusClosed
			}
			return nil, err
		}
	}
	return adv, nil
}

// Subscribe attaches a consumer to a topic instance. The node is created
// if no publisher exists yet, so subscribing never requires a prior
// advertise.
func (b *Bus) Subscribe(meta *Metadata, instance int) (*Subscriber, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if err := b.checkInstance(instance); err != nil {
		return nil, err
	}

	n, err := func() (*Node, error) {
		b.mu.Lock()
		defer b.mu.Unlock()

		if b.closed {
			return nil, ErrBusClosed
		}
		n, _, err := b.findOrCreateLocked(meta, instance, 1)
		if err != nil {
			return nil, err
		}
		if n.subscribers >= b.cfg.MaxSubscribers {
			return nil, fmt.Errorf("%w: %s/%d already has %d subscribers",
				ErrResourceExhausted, meta.Name, instance, n.subscribers)
		}
		n.subscribers++
		return n, nil
	}()
	if err != nil {
		return nil, err
	}

	sub := &Subscriber{
		id:      uuid.New(),
		bus:     b,
		node:    n,
		updated: make(chan struct{}, 1),
	}
	if testHookClaimed != nil {
		testHookClaimed()
	}
	if !n.watch(sub.updated) {
		// Close retired the node between the two critical sections.
		b.releaseSubscriber(n, sub.updated)
		return nil, ErrBusClosed
	}
	b.log.Debug("subscribed",
		zap.String("topic", meta.Name),
		zap.Int("instance", instance),
		zap.Stringer("handle", sub.id))
	return sub, nil
}

// Find returns the node for meta and instance without creating it.
func (b *Bus) Find(meta *Metadata, instance int) (*Node, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := b.findLocked(meta, instance); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: %s/%d", ErrNotFound, meta, instance)
}

// Delete removes a node and releases its ring buffer. It fails with
// ErrBusy while the node has advertisers or subscribers and with
// ErrInvalidHandle if the node is no longer registered.
func (b *Bus) Delete(n *Node) error {
	if n == nil {
		return fmt.Errorf("%w: nil node", ErrInvalidHandle)
	}
	b.mu.Lock()
	err := b.deleteLocked(n, false)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	n.retire()
	return nil
}

// releaseAdvertiser drops one advertiser claim on n.
func (b *Bus) releaseAdvertiser(n *Node) {
	b.mu.Lock()
	if n.advertisers > 0 {
		n.advertisers--
	}
	cleanup := b.idleLocked(n) && b.deleteLocked(n, false) == nil
	b.mu.Unlock()
	if cleanup {
		n.retire()
	}
}

// releaseSubscriber drops one subscription on n.
func (b *Bus) releaseSubscriber(n *Node, updated chan struct{}) {
	n.unwatch(updated)
	b.mu.Lock()
	if n.subscribers > 0 {
		n.subscribers--
	}
	cleanup := b.idleLocked(n) && b.deleteLocked(n, false) == nil
	b.mu.Unlock()
	if cleanup {
		n.retire()
	}
}

// NodeStatus is a point-in-time view of one node.
type NodeStatus struct {
	Topic       string
	TopicID     uint8
	Instance    int
	QueueSize   int
	Generation  uint64
	Advertisers int
	Subscribers int
	DataValid   bool
	Lost        uint64
}

// Status returns a snapshot of every node, ordered by topic name and
// instance.
func (b *Bus) Status() []NodeStatus {
	b.mu.Lock()
	nodes := make([]*Node, 0, len(b.nodes))
	out := make([]NodeStatus, 0, len(b.nodes))
	for _, n := range b.nodes {
		nodes = append(nodes, n)
		out = append(out, NodeStatus{
			Topic:       n.meta.Name,
			TopicID:     n.meta.ID,
			Instance:    n.instance,
			Advertisers: n.advertisers,
			Subscribers: n.subscribers,
		})
	}
	b.mu.Unlock()

	for i, n := range nodes {
		n.mu.RLock()
		if !n.deleted {
			out[i].QueueSize = n.ring.Capacity()
			out[i].Generation = n.ring.Generation()
			out[i].DataValid = out[i].Generation > 0
		}
		n.mu.RUnlock()
		out[i].Lost = n.lost.Load()
	}
	slices.SortFunc(out, func(a, b NodeStatus) int {
		if c := cmp.Compare(a.Topic, b.Topic); c != 0 {
			return c
		}
		return cmp.Compare(a.Instance, b.Instance)
	})
	return out
}

// Close tears the bus down. Every node is deleted regardless of
// outstanding handles, which then fail with ErrInvalidHandle. Advertise
// and Subscribe fail with ErrBusClosed afterwards. Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	nodes := make([]*Node, 0, len(b.nodes))
	for _, n := range b.nodes {
		if err := b.deleteLocked(n, true); err == nil {
			nodes = append(nodes, n)
		}
	}
	b.mu.Unlock()

	for _, n := range nodes {
		n.retire()
	}
	b.log.Debug("bus closed", zap.Int("nodes", len(nodes)))
}
