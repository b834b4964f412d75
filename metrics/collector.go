// Package metrics exposes fairrw.RWLock state as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/llxisdsh/fairrw"
)

const namespace = "fairrw"

// Collector reads an RWLock's Stats on every scrape. It never blocks the
// lock: Stats only loads atomics.
type Collector struct {
	lock *fairrw.RWLock

	readers        *prometheus.Desc
	pendingWriters *prometheus.Desc
	queuedWriters  *prometheus.Desc
	writerHolds    *prometheus.Desc
	reads          *prometheus.Desc
	writes         *prometheus.Desc
}

// NewCollector describes lock under the given name. The name becomes the
// constant label "lock", so several locks can share one registry.
func NewCollector(name string, lock *fairrw.RWLock) *Collector {
	labels := prometheus.Labels{"lock": name, "policy": lock.Policy().String()}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", metric), help, nil, labels)
	}
	return &Collector{
		lock:           lock,
		readers:        desc("active_readers", "Readers currently registered with the lock."),
		pendingWriters: desc("pending_writers", "Writers that announced intent and have not unlocked yet."),
		queuedWriters:  desc("queued_writers", "Writers waiting to acquire the lock."),
		writerHolds:    desc("writer_holding", "1 while a writer holds the lock."),
		reads:          desc("read_acquisitions_total", "Completed RLock calls."),
		writes:         desc("write_acquisitions_total", "Completed Lock calls."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.readers
	ch <- c.pendingWriters
	ch <- c.queuedWriters
	ch <- c.writerHolds
	ch <- c.reads
	ch <- c.writes
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.lock.Stats()
	var writer float64
	if s.Holder == fairrw.HolderWriter {
		writer = 1
	}
	ch <- prometheus.MustNewConstMetric(c.readers, prometheus.GaugeValue, float64(s.Readers))
	ch <- prometheus.MustNewConstMetric(c.pendingWriters, prometheus.GaugeValue, float64(s.PendingWriters))
	ch <- prometheus.MustNewConstMetric(c.queuedWriters, prometheus.GaugeValue, float64(s.QueuedWriters))
	ch <- prometheus.MustNewConstMetric(c.writerHolds, prometheus.GaugeValue, writer)
	ch <- prometheus.MustNewConstMetric(c.reads, prometheus.CounterValue, float64(s.Reads))
	ch <- prometheus.MustNewConstMetric(c.writes, prometheus.CounterValue, float64(s.Writes))
}
