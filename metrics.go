package uorb

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var nodeLabels = []string{"topic", "instance"}

type collector struct {
	bus *Bus

	publishes   *prometheus.Desc
	lost        *prometheus.Desc
	subscribers *prometheus.Desc
	advertisers *prometheus.Desc
	queueSize   *prometheus.Desc
}

// NewCollector returns a Prometheus collector exporting per-node counters
// taken from b.Status at scrape time.
func NewCollector(b *Bus) prometheus.Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("uorb", "node", name), help, nodeLabels, nil)
	}
	return &collector{
		bus:         b,
		publishes:   desc("publishes_total", "Messages published to the node (its generation)."),
		lost:        desc("lost_messages_total", "Messages overwritten before a subscriber read them."),
		subscribers: desc("subscribers", "Live subscriptions on the node."),
		advertisers: desc("advertisers", "Live advertisers on the node."),
		queueSize:   desc("queue_size", "Ring buffer capacity of the node."),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.publishes
	ch <- c.lost
	ch <- c.subscribers
	ch <- c.advertisers
	ch <- c.queueSize
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, st := range c.bus.Status() {
		inst := strconv.Itoa(st.Instance)
		ch <- prometheus.MustNewConstMetric(c.publishes, prometheus.CounterValue, float64(st.Generation), st.Topic, inst)
		ch <- prometheus.MustNewConstMetric(c.lost, prometheus.CounterValue, float64(st.Lost), st.Topic, inst)
		ch <- prometheus.MustNewConstMetric(c.subscribers, prometheus.GaugeValue, float64(st.Subscribers), st.Topic, inst)
		ch <- prometheus.MustNewConstMetric(c.advertisers, prometheus.GaugeValue, float64(st.Advertisers), st.Topic, inst)
		ch <- prometheus.MustNewConstMetric(c.queueSize, prometheus.GaugeValue, float64(st.QueueSize), st.Topic, inst)
	}
}
