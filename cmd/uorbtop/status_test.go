package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonoton/go-uorb"
)

func Test_PrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, []uorb.NodeStatus{
		{Topic: "battery_status", Instance: 1, QueueSize: 4, Generation: 120, Advertisers: 1, Subscribers: 1, Lost: 3},
		{Topic: "sensor_temp", Instance: 0, QueueSize: 4, Generation: 7, Advertisers: 1},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"TOPIC", "INST", "QUEUE", "GEN", "PUBS", "SUBS", "LOST"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"battery_status", "1", "4", "120", "1", "1", "3"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"sensor_temp", "0", "4", "7", "1", "0", "0"}, strings.Fields(lines[2]))
}
