package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/docshell/internal/event"
)

// RegisterBus exposes event bus counters on reg. Values are read from
// stats at scrape time.
func RegisterBus(reg prometheus.Registerer, stats func() event.Stats) error {
	counter := func(name, help string, read func(event.Stats) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{Name: name, Help: help}, func() float64 {
			return float64(read(stats()))
		})
	}

	collectors := []prometheus.Collector{
		counter("docshell_events_published_total", "Events published on the bus",
			func(s event.Stats) uint64 { return s.EventsPublished }),
		counter("docshell_event_handler_errors_total", "Event handlers that returned an error",
			func(s event.Stats) uint64 { return s.HandlerErrors }),
		counter("docshell_event_handler_panics_total", "Event handlers that panicked",
			func(s event.Stats) uint64 { return s.HandlerPanics }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "docshell_event_subscribers",
			Help: "Active event subscriptions",
		}, func() float64 { return float64(stats().ActiveSubscribers) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
