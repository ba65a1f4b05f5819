package uorb

import (
	"fmt"

	"go.uber.org/multierr"
)

// Metadata describes one topic type. It is created once per type, usually
// as a package-level variable, and never modified. Nodes and handles refer
// to it by pointer, so two Metadata values with the same name are still
// different topics.
type Metadata struct {
	// Name is the unique topic name, e.g. "sensor_accel".
	Name string
	// Size is the payload size in bytes.
	Size uint16
	// SizeNoPadding is Size without trailing padding, for compact logging.
	SizeNoPadding uint16
	// Fields is a semicolon separated field list such as
	// "float[3] position;bool armed". The bus does not parse it.
	Fields string
	// ID is the numeric topic type id.
	ID uint8
}

// Define returns metadata for a topic. A zero sizeNoPadding means the
// payload has no trailing padding.
func Define(name string, size, sizeNoPadding uint16, fields string, id uint8) *Metadata {
	if sizeNoPadding == 0 {
		sizeNoPadding = size
	}
	return &Metadata{
		Name:          name,
		Size:          size,
		SizeNoPadding: sizeNoPadding,
		Fields:        fields,
		ID:            id,
	}
}

// Validate reports every problem with m at once.
func (m *Metadata) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil metadata", ErrInvalidMetadata)
	}
	var err error
	if m.Name == "" {
		err = multierr.Append(err, fmt.Errorf("%w: empty name", ErrInvalidMetadata))
	}
	if m.Size == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: topic %q has zero size", ErrInvalidMetadata, m.Name))
	}
	if m.SizeNoPadding > m.Size {
		err = multierr.Append(err, fmt.Errorf("%w: topic %q size without padding %d exceeds size %d",
			ErrInvalidMetadata, m.Name, m.SizeNoPadding, m.Size))
	}
	return err
}

func (m *Metadata) String() string {
	if m == nil {
		return "<nil>"
	}
	return m.Name
}
