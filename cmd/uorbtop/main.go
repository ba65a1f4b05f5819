// Command uorbtop runs a simulated set of sensor publishers on a uorb bus
// and prints the bus status periodically, similar to "uorb top".
//
//	uorbtop -batteries 2 -queue 4 -duration 10s -metrics-addr :9100
//
// Every flag can also be set through the environment with a UORB_ prefix,
// e.g. UORB_QUEUE=8.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonoton/go-uorb"
)

type battery struct {
	Voltage   float32
	Current   float32
	Remaining float32
}

var (
	sensorTemp    = uorb.DefineTopic[float32]("sensor_temp", "float32 celsius", 1)
	batteryStatus = uorb.DefineTopic[battery]("battery_status", "float32 voltage;float32 current;float32 remaining", 2)
)

type options struct {
	duration    time.Duration
	interval    time.Duration
	rate        time.Duration
	throttle    time.Duration
	queue       int
	batteries   int
	metricsAddr string
	debug       bool
}

func main() {
	fs := flag.NewFlagSet("uorbtop", flag.ContinueOnError)
	var o options
	fs.DurationVar(&o.duration, "duration", 0, "stop after this long; 0 runs until interrupted")
	fs.DurationVar(&o.interval, "interval", time.Second, "status print interval")
	fs.DurationVar(&o.rate, "rate", 20*time.Millisecond, "publish period of every simulated sensor")
	fs.DurationVar(&o.throttle, "throttle", 0, "minimum update interval of the battery consumer")
	fs.IntVar(&o.queue, "queue", 4, "queue size of every advertised topic")
	fs.IntVar(&o.batteries, "batteries", 2, "number of battery instances to simulate")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
	fs.BoolVar(&o.debug, "debug", false, "enable debug logging")
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("UORB")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(o.debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if o.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.duration)
		defer cancel()
	}

	if err := run(ctx, o, logger); err != nil {
		logger.Fatal("uorbtop failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func run(ctx context.Context, o options, logger *zap.Logger) error {
	cfg := uorb.DefaultConfig()
	cfg.Logger = logger.Named("uorb")
	bus, err := uorb.New(cfg)
	if err != nil {
		return err
	}
	defer bus.Close()

	g, ctx := errgroup.WithContext(ctx)

	temp, err := bus.Advertise(sensorTemp, uorb.AnyInstance, o.queue, nil)
	if err != nil {
		return err
	}
	g.Go(func() error {
		return tick(ctx, o.rate, func(n int) error {
			return uorb.PublishValue(temp, float32(20+5*math.Sin(float64(n)/50)))
		})
	})

	for i := 0; i < o.batteries; i++ {
		adv, err := bus.Advertise(batteryStatus, uorb.AnyInstance, o.queue, nil)
		if err != nil {
			return err
		}
		logger.Info("battery advertised", zap.Int("instance", adv.Instance()))
		g.Go(func() error {
			return tick(ctx, o.rate, func(n int) error {
				remaining := 1 - float32(n%1000)/1000
				return uorb.PublishValue(adv, battery{
					Voltage:   12.6 * (0.8 + 0.2*remaining),
					Current:   2 + float32(adv.Instance()),
					Remaining: remaining,
				})
			})
		})

		sub, err := bus.Subscribe(batteryStatus, adv.Instance())
		if err != nil {
			return err
		}
		if err := sub.SetInterval(o.throttle); err != nil {
			return err
		}
		g.Go(func() error { return consume(ctx, sub, logger) })
	}

	g.Go(func() error {
		return tick(ctx, o.interval, func(int) error {
			printStatus(os.Stdout, bus.Status())
			return nil
		})
	})

	if o.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(uorb.NewCollector(bus))
		srv := &http.Server{
			Addr:              o.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("serving metrics", zap.String("addr", o.metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	printStatus(os.Stdout, bus.Status())
	return err
}

// tick calls fn every period until ctx ends. fn receives the tick count.
func tick(ctx context.Context, period time.Duration, fn func(n int) error) error {
	t := time.NewTicker(period)
	defer t.Stop()
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if err := fn(n); err != nil {
				return err
			}
		}
	}
}

// consume drains sub whenever it is signalled, honouring its update
// interval through Check. A signal that arrives while the subscriber is
// throttled is retried once the interval has passed.
func consume(ctx context.Context, sub *uorb.Subscriber, logger *zap.Logger) error {
	defer sub.Unsubscribe()
	var (
		b         battery
		retry     <-chan time.Time
		signalled bool
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.Updated():
			signalled = true
		case <-retry:
			retry, signalled = nil, false
		}
		ok, err := sub.Check()
		if err != nil {
			return err
		}
		if !ok {
			// After the retry the interval has passed, so false means
			// there is nothing left to read.
			if d := sub.Interval(); signalled && d > 0 && retry == nil {
				retry = time.After(d)
			}
			continue
		}
		for {
			res, err := uorb.CopyValue(sub, &b)
			if errors.Is(err, uorb.ErrNoUpdate) {
				break
			}
			if err != nil {
				return err
			}
			if res.Lost > 0 {
				logger.Warn("battery consumer fell behind",
					zap.Int("instance", sub.Instance()),
					zap.Uint64("lost", res.Lost))
			}
		}
	}
}
