package uorb

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CopyResult describes one successful Copy.
type CopyResult struct {
	// Generation is the generation that was copied.
	Generation uint64
	// Lost is the number of messages that were overwritten before this
	// subscriber could read them. It is advisory; the copy still succeeded.
	Lost uint64
}

// Subscriber is a consumer's cursor into one node's generation stream.
// It belongs to the consumer that created it and is released with
// Unsubscribe.
type Subscriber struct {
	id      uuid.UUID
	bus     *Bus
	node    *Node
	updated chan struct{}

	mu           sync.Mutex
	lastGen      uint64
	lastUpdate   time.Time
	interval     time.Duration
	unsubscribed bool
}

// ID returns the handle identifier used in log output.
func (s *Subscriber) ID() string { return s.id.String() }

// Metadata returns the subscribed topic.
func (s *Subscriber) Metadata() *Metadata { return s.node.meta }

// Instance returns the subscribed instance index.
func (s *Subscriber) Instance() int { return s.node.instance }

// Updated returns a channel that receives a value after a publish to the
// node. Signals coalesce: a receive means "call Copy until ErrNoUpdate".
// The channel is never closed.
func (s *Subscriber) Updated() <-chan struct{} { return s.updated }

// SetInterval sets the minimum time between updates reported by Check.
// Zero disables throttling.
func (s *Subscriber) SetInterval(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribed {
		return ErrInvalidHandle
	}
	if d < 0 {
		d = 0
	}
	s.interval = d
	return nil
}

// Interval returns the update interval set with SetInterval.
func (s *Subscriber) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// LastGeneration returns the generation last consumed by Copy, or 0 if
// nothing has been read yet.
func (s *Subscriber) LastGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastGen
}

func (s *Subscriber) invalid() error {
	return fmt.Errorf("%w: subscription to %s/%d", ErrInvalidHandle, s.node.meta.Name, s.node.instance)
}

// Check reports whether a generation newer than the last one read exists
// and, with an update interval set, whether the interval has elapsed since
// the last Copy. Check does not change the subscriber.
func (s *Subscriber) Check() (bool, error) {
	if s == nil {
		return false, ErrInvalidHandle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribed {
		return false, s.invalid()
	}
	g, live := s.node.generation()
	if !live {
		return false, s.invalid()
	}
	if g == s.lastGen {
		return false, nil
	}
	if s.interval > 0 && s.bus.clock.Since(s.lastUpdate) < s.interval {
		return false, nil
	}
	return true, nil
}

// Copy copies the next unread payload into out and advances the cursor.
// If the subscriber fell more than the queue size behind, the cursor jumps
// to the oldest retained payload and CopyResult.Lost reports how many
// messages were skipped. When nothing new exists Copy returns ErrNoUpdate.
func (s *Subscriber) Copy(out []byte) (CopyResult, error) {
	if s == nil {
		return CopyResult{}, ErrInvalidHandle
	}
	meta := s.node.meta
	if len(out) != int(meta.Size) {
		return CopyResult{}, fmt.Errorf("%w: topic %s wants %d bytes, got %d",
			ErrSizeMismatch, meta.Name, meta.Size, len(out))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribed {
		return CopyResult{}, s.invalid()
	}
	gen, lost, ok, live := s.node.read(s.lastGen, out, s.updated)
	if !live {
		return CopyResult{}, s.invalid()
	}
	if !ok {
		return CopyResult{}, ErrNoUpdate
	}
	s.lastGen = gen
	s.lastUpdate = s.bus.clock.Now()
	if lost > 0 {
		s.node.lost.Add(lost)
		if ce := s.bus.log.Check(zap.DebugLevel, "subscriber overrun"); ce != nil {
			ce.Write(
				zap.String("topic", meta.Name),
				zap.Int("instance", s.node.instance),
				zap.Stringer("handle", s.id),
				zap.Uint64("lost", lost),
				zap.Uint64("generation", gen))
		}
	}
	return CopyResult{Generation: gen, Lost: lost}, nil
}

// Unsubscribe releases the subscription. Any later call on the handle,
// including a second Unsubscribe, fails with ErrInvalidHandle.
func (s *Subscriber) Unsubscribe() error {
	if s == nil {
		return ErrInvalidHandle
	}
	s.mu.Lock()
	if s.unsubscribed {
		s.mu.Unlock()
		return s.invalid()
	}
	s.unsubscribed = true
	s.mu.Unlock()

	s.bus.releaseSubscriber(s.node, s.updated)
	s.bus.log.Debug("unsubscribed",
		zap.String("topic", s.node.meta.Name),
		zap.Int("instance", s.node.instance),
		zap.Stringer("handle", s.id))
	return nil
}
