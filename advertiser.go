package uorb

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Advertiser authorizes publishing to one node. It may be shared freely
// between goroutines and never has to be released; Unadvertise retires it
// explicitly.
type Advertiser struct {
	id   uuid.UUID
	bus  *Bus
	node *Node

	unadvertised atomic.Bool
}

// ID returns the handle identifier used in log output.
func (a *Advertiser) ID() string { return a.id.String() }

// Metadata returns the advertised topic.
func (a *Advertiser) Metadata() *Metadata { return a.node.meta }

// Instance returns the advertised instance index.
func (a *Advertiser) Instance() int { return a.node.instance }

// Publish copies p into the node's ring buffer and advances its generation.
// It never blocks and does not allocate. len(p) must equal the topic size.
func (a *Advertiser) Publish(p []byte) error {
	if a == nil || a.unadvertised.Load() {
		return ErrInvalidHandle
	}
	if len(p) != int(a.node.meta.Size) {
		return fmt.Errorf("%w: topic %s wants %d bytes, got %d",
			ErrSizeMismatch, a.node.meta.Name, a.node.meta.Size, len(p))
	}
	if !a.node.write(p) {
		return fmt.Errorf("%w: node %s/%d was deleted", ErrInvalidHandle, a.node.meta.Name, a.node.instance)
	}
	return nil
}

// Unadvertise gives up the advertiser's claim on the instance and
// invalidates the handle. Retained data stays readable by subscribers.
func (a *Advertiser) Unadvertise() error {
	if a == nil || !a.unadvertised.CompareAndSwap(false, true) {
		return ErrInvalidHandle
	}
	a.bus.releaseAdvertiser(a.node)
	a.bus.log.Debug("unadvertised",
		zap.String("topic", a.node.meta.Name),
		zap.Int("instance", a.node.instance),
		zap.Stringer("handle", a.id))
	return nil
}
