// Package ring implements the generation-indexed slot buffer that backs a
// single topic instance.
//
// A Ring holds the most recent Capacity payloads of a fixed size. Every
// Write advances the generation by one; the payload written by the write
// that produced generation g lives in slot (g-1) % Capacity. A reader keeps
// the last generation it consumed and asks for the next one with Next.
//
// Ring does no locking. The owner serialises Write against Next and Resize.
package ring

// Ring is a bounded circular buffer of fixed-size slots.
type Ring struct {
	slotSize int
	capacity uint64
	data     []byte
	gen      uint64
}

// New returns a ring of capacity slots of slotSize bytes each.
// capacity must be at least 1.
func New(capacity, slotSize int) *Ring {
	if capacity < 1 {
		panic("ring: capacity must be at least 1")
	}
	if slotSize < 0 {
		panic("ring: negative slot size")
	}
	return &Ring{
		slotSize: slotSize,
		capacity: uint64(capacity),
		data:     make([]byte, capacity*slotSize),
	}
}

// Capacity returns the number of retained payloads.
func (r *Ring) Capacity() int { return int(r.capacity) }

// SlotSize returns the payload size in bytes.
func (r *Ring) SlotSize() int { return r.slotSize }

// Generation returns the number of writes so far.
func (r *Ring) Generation() uint64 { return r.gen }

// Resize changes the capacity. It is only allowed before the first write,
// since a resize would otherwise reshuffle retained history. It reports
// whether the resize happened.
func (r *Ring) Resize(capacity int) bool {
	if r.gen != 0 || capacity < 1 {
		return false
	}
	r.capacity = uint64(capacity)
	r.data = make([]byte, capacity*r.slotSize)
	return true
}

func (r *Ring) slot(gen uint64) []byte {
	i := int((gen - 1) % r.capacity)
	return r.data[i*r.slotSize : (i+1)*r.slotSize]
}

// Write copies p into the next slot and returns the new generation.
// len(p) must equal SlotSize.
func (r *Ring) Write(p []byte) uint64 {
	if len(p) != r.slotSize {
		panic("ring: payload size mismatch")
	}
	copy(r.slot(r.gen+1), p)
	r.gen++
	return r.gen
}

// Next copies the payload following generation last into out.
//
// It returns the generation that was copied, the number of generations
// between last and that generation that were overwritten before they could
// be read, and ok=false if nothing newer than last exists. When the reader
// has fallen more than Capacity generations behind, it is moved to the
// oldest retained generation.
//
// Generations are unsigned and compared by subtraction, so a cursor that is
// ahead of the ring (which only happens after misuse) is treated as
// up to date.
func (r *Ring) Next(last uint64, out []byte) (gen, lost uint64, ok bool) {
	g := r.gen
	if g == last {
		return 0, 0, false
	}
	behind := g - last
	if behind > g {
		// last is in the future of this ring.
		return 0, 0, false
	}
	next := last + 1
	if behind > r.capacity {
		lost = behind - r.capacity
		next = g - r.capacity + 1
	}
	copy(out, r.slot(next))
	return next, lost, true
}

// Latest copies the most recent payload into out and returns its
// generation, or false if nothing has been written.
func (r *Ring) Latest(out []byte) (uint64, bool) {
	if r.gen == 0 {
		return 0, false
	}
	copy(out, r.slot(r.gen))
	return r.gen, true
}
