package uorb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FindOrCreateReturnsExisting(t *testing.T) {
	b := newTestBus(t, DefaultConfig())

	b.mu.Lock()
	defer b.mu.Unlock()

	n1, created, err := b.findOrCreateLocked(testBattery, 0, 2)
	require.NoError(t, err)
	assert.True(t, created)
	n2, created, err := b.findOrCreateLocked(testBattery, 0, 5)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, n1, n2, "at most one node per topic instance")
	assert.Nil(t, b.findLocked(testBattery, 1))
	assert.Nil(t, b.findLocked(testTemperature, 0), "topics are keyed by metadata identity")
}

func Test_AllocateInstanceFillsHoles(t *testing.T) {
	b := newTestBus(t, DefaultConfig())

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, i := range []int{0, 2} {
		n, _, err := b.findOrCreateLocked(testBattery, i, 1)
		require.NoError(t, err)
		n.advertisers = 1
	}
	n, err := b.allocateInstanceLocked(testBattery, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n.instance)
}

func Test_DeleteLockedForce(t *testing.T) {
	b := newTestBus(t, DefaultConfig())

	b.mu.Lock()
	defer b.mu.Unlock()

	n, _, err := b.findOrCreateLocked(testBattery, 0, 1)
	require.NoError(t, err)
	n.subscribers = 1

	assert.ErrorIs(t, b.deleteLocked(n, false), ErrBusy)
	require.NoError(t, b.deleteLocked(n, true))
	assert.Nil(t, b.findLocked(testBattery, 0))
	assert.ErrorIs(t, b.deleteLocked(n, true), ErrInvalidHandle)
}
