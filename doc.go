/*
Package uorb implements a topic-based, in-memory publish-subscribe bus in the
style of the uORB micro object request broker used by flight-controller
middleware.

Producers advertise a topic instance and publish fixed-size payloads into it.
Consumers subscribe and poll for updates or wait on a notification channel.
Every topic instance keeps the last N payloads in a ring buffer and a
generation counter, so a consumer that falls behind learns exactly how many
messages it lost instead of silently skipping them.

# Key Features

  - Non-Blocking Publish: Publish copies one payload and increments a counter
    under a short per-node lock. It never waits for subscribers and never
    allocates.

  - Multiple Instances: A topic may have several instances (sensor #0, #1, ...).
    Advertising with AnyInstance hands each publisher its own instance.

  - Subscribe Before Publish: Subscribing creates the node if no publisher
    exists yet, so start-up order does not matter.

  - Overrun Reporting: Copy advances one generation at a time. A subscriber
    more than the queue size behind jumps to the oldest retained payload and
    gets the number of lost messages in CopyResult.Lost.

  - Throttling: Subscriber.SetInterval limits how often Check reports an
    update.

  - Diagnostics: Bus.Status and NewCollector expose per-node generation,
    subscriber and loss counters.

# Defining Topics

A topic is described by Metadata, compared by pointer. Define it once at
package level:

	var SensorTemp = uorb.Define("sensor_temp", 4, 4, "float32 celsius", 1)

For fixed-size Go types DefineTopic derives the size from the type:

	type Battery struct {
		Voltage float32
		Current float32
		Remaining float32
	}

	var BatteryStatus = uorb.DefineTopic[Battery]("battery_status",
		"float32 voltage;float32 current;float32 remaining", 2)

# Publishing and Subscribing

	bus, err := uorb.New(uorb.DefaultConfig())
	if err != nil {
		// Handle error
	}
	defer bus.Close()

	// Advertise instance 0 with a queue of 4 payloads.
	adv, err := bus.Advertise(BatteryStatus, 0, 4, nil)
	if err != nil {
		// Handle error
	}

	sub, err := bus.Subscribe(BatteryStatus, 0)
	if err != nil {
		// Handle error
	}
	defer sub.Unsubscribe()

	_ = uorb.PublishValue(adv, Battery{Voltage: 16.4, Remaining: 0.9})

	// Poll.
	if ok, _ := sub.Check(); ok {
		var b Battery
		res, err := uorb.CopyValue(sub, &b)
		if err == nil && res.Lost > 0 {
			fmt.Printf("missed %d battery updates\n", res.Lost)
		}
	}

# Waiting for Updates

The bus never blocks a caller. Updated returns a coalescing channel that is
signalled after every publish; combine it with your own context:

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Updated():
		}
		for {
			var b Battery
			_, err := uorb.CopyValue(sub, &b)
			if errors.Is(err, uorb.ErrNoUpdate) {
				break
			}
			if err != nil {
				return
			}
			// Use b.
		}
	}

# Policies

By default several advertisers may publish to one instance and the last
write wins; Config.SingleWriter makes a second advertise of a pinned instance
fail with ErrAlreadyAdvertised. Nodes live until Bus.Delete or Bus.Close
unless Config.EagerCleanup is set, in which case a node is deleted as soon as
it has neither advertisers nor subscribers.
*/
package uorb
