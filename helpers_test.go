package uorb

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	testTemperature = Define("temperature", 4, 0, "float32 celsius", 1)
	testBattery     = Define("battery", 4, 0, "uint32 millivolts", 2)
	testCounter     = Define("counter", 8, 0, "uint32 publisher;uint32 seq", 3)
)

func newTestBus(t *testing.T, cfg Config) *Bus {
	t.Helper()
	b, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func f32(v float32) []byte {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint32(p, math.Float32bits(v))
	return p
}

func asF32(p []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(p))
}

func u32(v uint32) []byte {
	p := make([]byte, 4)
	binary.LittleEndian.PutUint32(p, v)
	return p
}

func asU32(p []byte) uint32 { return binary.LittleEndian.Uint32(p) }
