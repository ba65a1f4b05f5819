package main

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonoton/go-uorb"
)

type battery struct {
	Voltage   float32
	Remaining float32
}

var (
	temperature   = uorb.DefineTopic[float32]("temperature", "float32 celsius", 1)
	counter       = uorb.DefineTopic[uint32]("counter", "uint32 value", 2)
	batteryStatus = uorb.DefineTopic[battery]("battery", "float32 voltage;float32 remaining", 3)
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := uorb.DefaultConfig()
	cfg.Logger = logger
	bus, err := uorb.New(cfg)
	if err != nil {
		panic(err)
	}
	defer bus.Close()

	fmt.Println("--- single value ---")
	singleValue(bus)

	fmt.Println("\n--- overrun ---")
	overrun(bus)

	fmt.Println("\n--- multiple instances ---")
	instances(bus)

	fmt.Println("\n--- throttled subscriber ---")
	throttled(bus)

	fmt.Println("\n--- status ---")
	for _, st := range bus.Status() {
		fmt.Printf("%s/%d queue=%d gen=%d subs=%d lost=%d\n",
			st.Topic, st.Instance, st.QueueSize, st.Generation, st.Subscribers, st.Lost)
	}
}

func singleValue(bus *uorb.Bus) {
	adv, err := bus.Advertise(temperature, uorb.AnyInstance, 1, nil)
	if err != nil {
		panic(err)
	}
	defer adv.Unadvertise()
	if err := uorb.PublishValue(adv, float32(21.5)); err != nil {
		panic(err)
	}

	sub, err := bus.Subscribe(temperature, adv.Instance())
	if err != nil {
		panic(err)
	}
	defer sub.Unsubscribe()

	ok := mustCheck(sub)
	fmt.Println("check:", ok)
	var v float32
	if _, err := uorb.CopyValue(sub, &v); err == nil {
		fmt.Println("copy:", v)
	}
	ok = mustCheck(sub)
	fmt.Println("check:", ok)
}

func overrun(bus *uorb.Bus) {
	adv, err := bus.Advertise(counter, 0, 3, nil)
	if err != nil {
		panic(err)
	}
	defer adv.Unadvertise()
	for i := uint32(1); i <= 5; i++ {
		if err := uorb.PublishValue(adv, i); err != nil {
			panic(err)
		}
	}

	sub, err := bus.Subscribe(counter, 0)
	if err != nil {
		panic(err)
	}
	defer sub.Unsubscribe()
	for {
		var v uint32
		res, err := uorb.CopyValue(sub, &v)
		if errors.Is(err, uorb.ErrNoUpdate) {
			fmt.Println("no update")
			return
		}
		if err != nil {
			panic(err)
		}
		fmt.Printf("copy: %d (generation %d, lost %d)\n", v, res.Generation, res.Lost)
	}
}

func instances(bus *uorb.Bus) {
	var advs []*uorb.Advertiser
	for i := 0; i < 2; i++ {
		adv, err := bus.Advertise(batteryStatus, uorb.AnyInstance, 1, nil)
		if err != nil {
			panic(err)
		}
		defer adv.Unadvertise()
		fmt.Println("advertised instance", adv.Instance())
		advs = append(advs, adv)
	}

	sub, err := bus.Subscribe(batteryStatus, 0)
	if err != nil {
		panic(err)
	}
	defer sub.Unsubscribe()

	if err := uorb.PublishValue(advs[1], battery{Voltage: 11.1, Remaining: 0.4}); err != nil {
		panic(err)
	}
	ok := mustCheck(sub)
	fmt.Println("instance 0 updated after publish to 1:", ok)

	if err := uorb.PublishValue(advs[0], battery{Voltage: 12.4, Remaining: 0.9}); err != nil {
		panic(err)
	}
	var b battery
	if _, err := uorb.CopyValue(sub, &b); err == nil {
		fmt.Printf("instance 0: %.1fV %.0f%%\n", b.Voltage, b.Remaining*100)
	}
}

func throttled(bus *uorb.Bus) {
	adv, err := bus.Advertise(temperature, uorb.AnyInstance, 1, nil)
	if err != nil {
		panic(err)
	}
	defer adv.Unadvertise()

	sub, err := bus.Subscribe(temperature, adv.Instance())
	if err != nil {
		panic(err)
	}
	defer sub.Unsubscribe()
	if err := sub.SetInterval(50 * time.Millisecond); err != nil {
		panic(err)
	}

	delivered := 0
	deadline := time.Now().Add(220 * time.Millisecond)
	for t := float32(0); time.Now().Before(deadline); t++ {
		if err := uorb.PublishValue(adv, t); err != nil {
			panic(err)
		}
		if ok := mustCheck(sub); ok {
			var v float32
			if _, err := uorb.CopyValue(sub, &v); err == nil {
				delivered++
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	fmt.Println("updates delivered at 50ms interval:", delivered)
}

func mustCheck(sub *uorb.Subscriber) bool {
	ok, err := sub.Check()
	if err != nil {
		panic(err)
	}
	return ok
}
