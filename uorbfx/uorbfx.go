// Package uorbfx wires a uorb.Bus into a go.uber.org/fx application.
//
// Supply a uorb.Config and, optionally, a *zap.Logger:
//
//	fx.New(
//		fx.Supply(uorb.DefaultConfig()),
//		uorbfx.Module,
//		fx.Invoke(func(bus *uorb.Bus) { ... }),
//	)
//
// The bus is closed when the application stops.
package uorbfx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/jonoton/go-uorb"
)

// Module provides *uorb.Bus.
var Module = fx.Module("uorb",
	fx.Provide(NewBus),
)

// Params are the inputs of NewBus.
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    uorb.Config
	Logger    *zap.Logger `optional:"true"`
}

// NewBus creates a bus from p.Config and closes it on stop. A supplied
// logger replaces the one in the config.
func NewBus(p Params) (*uorb.Bus, error) {
	cfg := p.Config
	if p.Logger != nil {
		cfg.Logger = p.Logger.Named("uorb")
	}
	bus, err := uorb.New(cfg)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			bus.Close()
			return nil
		},
	})
	return bus, nil
}
