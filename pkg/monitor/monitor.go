// Package monitor runs the sampling loop: take a sample, add it to its
// event's running total, look up a comparison and print the result.
package monitor

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/ja7ad/joulewatch/pkg/consumption"
	"github.com/ja7ad/joulewatch/pkg/report"
	"github.com/ja7ad/joulewatch/pkg/types"
)

// SampleSource is a blocking, pull-based sequence of samples.
// *perf.Reader and *rapl.Sampler implement it.
type SampleSource interface {
	Next() bool
	Sample() types.Sample
	Err() error
}

// Monitor keeps one running total per event.
type Monitor struct {
	// Acc configures each event's accumulator.
	Acc   consumption.Config
	Table *consumption.Table
	Out   *report.Writer
	Log   zerolog.Logger
	// Labeled prefixes every line with the event name.
	Labeled bool

	accs  map[string]*consumption.Accumulator
	order []string
}

// EventStats summarizes one event of a finished run.
type EventStats struct {
	Event          string
	Samples        int
	Total          types.Joules
	Avg            consumption.Result
	SmoothedPowerW float64
}

// Stats summarizes a finished run, events in first-seen order.
type Stats struct {
	Events []EventStats
}

// Samples returns the number of samples over all events.
func (s Stats) Samples() int {
	n := 0
	for _, e := range s.Events {
		n += e.Samples
	}
	return n
}

// Run consumes src until it ends. It returns nil when the source ends
// cleanly and the first read or write error otherwise.
func (m *Monitor) Run(src SampleSource) (Stats, error) {
	for src.Next() {
		s := src.Sample()
		acc := m.accumulator(s.Event)
		total := acc.Apply(s.Energy)

		var cmp *consumption.Comparison
		if c, ok := m.Table.Lookup(total); ok {
			cmp = &c
		}

		label := ""
		if m.Labeled {
			label = Label(s.Event)
		}
		if err := m.Out.WriteSample(label, s.Energy, total, cmp); err != nil {
			return m.stats(), err
		}

		m.Log.Debug().
			Str("event", s.Event).
			Float64("sample_j", float64(s.Energy)).
			Float64("total_j", float64(total)).
			Float64("smoothed_w", acc.SmoothedPowerW()).
			Msg("sample")
	}
	return m.stats(), src.Err()
}

func (m *Monitor) accumulator(event string) *consumption.Accumulator {
	if m.accs == nil {
		m.accs = make(map[string]*consumption.Accumulator)
	}
	acc, ok := m.accs[event]
	if !ok {
		cfg := m.Acc
		acc = consumption.New(&cfg)
		m.accs[event] = acc
		m.order = append(m.order, event)
	}
	return acc
}

func (m *Monitor) stats() Stats {
	st := Stats{Events: make([]EventStats, 0, len(m.order))}
	for _, ev := range m.order {
		acc := m.accs[ev]
		st.Events = append(st.Events, EventStats{
			Event:          ev,
			Samples:        acc.Count(),
			Total:          acc.EnergyCumJ(),
			Avg:            acc.Averages(),
			SmoothedPowerW: acc.SmoothedPowerW(),
		})
	}
	return st
}

// Label shortens a perf event name for display: power/energy-ram/ -> energy-ram.
func Label(event string) string {
	return strings.TrimSuffix(strings.TrimPrefix(event, "power/"), "/")
}
