package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonoton/go-uorb"
)

func Test_ConsumeReadsThrottledBacklog(t *testing.T) {
	bus, err := uorb.New(uorb.DefaultConfig())
	require.NoError(t, err)
	defer bus.Close()

	adv, err := bus.Advertise(batteryStatus, 0, 4, nil)
	require.NoError(t, err)
	sub, err := bus.Subscribe(batteryStatus, 0)
	require.NoError(t, err)
	require.NoError(t, sub.SetInterval(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consume(ctx, sub, zaptest.NewLogger(t)) }()

	require.NoError(t, uorb.PublishValue(adv, battery{Voltage: 12.6, Remaining: 1}))
	require.Eventually(t, func() bool { return sub.LastGeneration() == 1 },
		time.Second, 5*time.Millisecond)

	// Arrives inside the interval and is the last publish.
	require.NoError(t, uorb.PublishValue(adv, battery{Voltage: 12.5, Remaining: 0.99}))
	require.Eventually(t, func() bool { return sub.LastGeneration() == 2 },
		time.Second, 5*time.Millisecond)
	t.Log("throttled update read without a further publish")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
