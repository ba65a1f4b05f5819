package uorb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// DefineTopic returns metadata for a fixed-size Go type. The payload is
// the little-endian encoding/binary layout of T, which has no padding.
// It panics if T has no fixed size or does not fit a topic.
func DefineTopic[T any](name, fields string, id uint8) *Metadata {
	var v T
	size := binary.Size(v)
	if size <= 0 || size > math.MaxUint16 {
		panic(fmt.Sprintf("uorb: topic %q: type %T has no usable fixed size", name, v))
	}
	return Define(name, uint16(size), uint16(size), fields, id)
}

// PublishValue encodes v and publishes it through a.
func PublishValue[T any](a *Advertiser, v T) error {
	if a == nil {
		return ErrInvalidHandle
	}
	var buf bytes.Buffer
	buf.Grow(int(a.node.meta.Size))
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("uorb: encode %s: %w", a.node.meta.Name, err)
	}
	return a.Publish(buf.Bytes())
}

// CopyValue copies the next unread payload from s and decodes it into v.
// v is left untouched if Copy fails.
func CopyValue[T any](s *Subscriber, v *T) (CopyResult, error) {
	if s == nil {
		return CopyResult{}, ErrInvalidHandle
	}
	buf := make([]byte, s.node.meta.Size)
	res, err := s.Copy(buf)
	if err != nil {
		return res, err
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, v); err != nil {
		return res, fmt.Errorf("uorb: decode %s: %w", s.node.meta.Name, err)
	}
	return res, nil
}
