package uorb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func Test_DefineDefaultsSizeNoPadding(t *testing.T) {
	m := Define("vehicle_status", 12, 0, "uint8 arming_state", 7)
	assert.Equal(t, uint16(12), m.SizeNoPadding)
	assert.NoError(t, m.Validate())
	assert.Equal(t, "vehicle_status", m.String())
}

func Test_ValidateReportsEveryProblem(t *testing.T) {
	err := (&Metadata{SizeNoPadding: 3}).Validate()
	assert.ErrorIs(t, err, ErrInvalidMetadata)
	assert.Len(t, multierr.Errors(err), 3)

	var nilMeta *Metadata
	assert.ErrorIs(t, nilMeta.Validate(), ErrInvalidMetadata)
	assert.Equal(t, "<nil>", nilMeta.String())
}
