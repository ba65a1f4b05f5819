package uorbfx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"

	"github.com/jonoton/go-uorb"
	"github.com/jonoton/go-uorb/uorbfx"
)

var sensorGyro = uorb.Define("sensor_gyro", 12, 0, "float32[3] xyz", 9)

func Test_ModuleProvidesBus(t *testing.T) {
	var bus *uorb.Bus
	app := fxtest.New(t,
		fx.Supply(uorb.DefaultConfig()),
		fx.Supply(zaptest.NewLogger(t)),
		uorbfx.Module,
		fx.Populate(&bus),
	)
	app.RequireStart()
	require.NotNil(t, bus)

	sub, err := bus.Subscribe(sensorGyro, 0)
	require.NoError(t, err)

	app.RequireStop()
	_, err = sub.Check()
	assert.ErrorIs(t, err, uorb.ErrInvalidHandle, "stop closes the bus")
}

func Test_ModuleRejectsBadConfig(t *testing.T) {
	app := fx.New(
		fx.NopLogger,
		fx.Supply(uorb.Config{MaxNodes: -1}),
		uorbfx.Module,
		fx.Invoke(func(*uorb.Bus) {}),
	)
	assert.ErrorContains(t, app.Err(), uorb.ErrInvalidConfig.Error())
}
