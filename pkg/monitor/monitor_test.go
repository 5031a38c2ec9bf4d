package monitor

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/joulewatch/pkg/consumption"
	"github.com/ja7ad/joulewatch/pkg/perf"
	"github.com/ja7ad/joulewatch/pkg/report"
	"github.com/ja7ad/joulewatch/pkg/types"
)

type lineSource struct {
	lines []string
	i     int
	cur   string
	err   error
}

func (s *lineSource) Next() bool {
	if s.i >= len(s.lines) {
		return false
	}
	s.cur = s.lines[s.i]
	s.i++
	return true
}

func (s *lineSource) Line() string { return s.cur }
func (s *lineSource) Err() error   { return s.err }

type sampleSource struct {
	samples []types.Sample
	i       int
	err     error
}

func (s *sampleSource) Next() bool {
	if s.i >= len(s.samples) {
		return false
	}
	s.i++
	return true
}

func (s *sampleSource) Sample() types.Sample { return s.samples[s.i-1] }
func (s *sampleSource) Err() error           { return s.err }

func newMonitor(out *bytes.Buffer) *Monitor {
	return &Monitor{
		Acc:   consumption.Config{Interval: time.Second, Alpha: 0.5},
		Table: consumption.DefaultTable(),
		Out:   report.NewWriter(out),
		Log:   zerolog.Nop(),
	}
}

func outputLines(buf *bytes.Buffer) []string {
	s := strings.TrimSuffix(buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestRun_AccumulatesAndCompares(t *testing.T) {
	var out bytes.Buffer
	m := newMonitor(&out)

	src := perf.NewReader(&lineSource{lines: []string{
		"#           time             counts   unit events",
		"     1.000100000             100,00 Joules power/energy-pkg/",
		"     2.000200000             100,00 Joules power/energy-pkg/",
		"# interleaved header",
		"     3.000300000              50,00 Joules power/energy-pkg/",
	}}, "power/energy-pkg/")

	stats, err := m.Run(src)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Current energy use: 100.00 joules. Since program start: 100.0 joules.",
		"Current energy use: 100.00 joules. Since program start: 200.0 joules. With this energy, you could play an MP3 song. 🎧",
		"Current energy use: 50.00 joules. Since program start: 250.0 joules. With this energy, you could play an MP3 song. 🎧",
	}, outputLines(&out))

	require.Len(t, stats.Events, 1)
	ev := stats.Events[0]
	assert.Equal(t, "power/energy-pkg/", ev.Event)
	assert.Equal(t, 3, ev.Samples)
	assert.Equal(t, types.Joules(250), ev.Total)
	assert.InDelta(t, 250.0/3, float64(ev.Avg.EnergyJ), 1e-9)
	// EMA(0.5) over 100, 100, 50 W
	assert.InDelta(t, 75.0, ev.SmoothedPowerW, 1e-9)
}

func TestRun_CommentsOnly(t *testing.T) {
	var out bytes.Buffer
	m := newMonitor(&out)

	stats, err := m.Run(perf.NewReader(&lineSource{lines: []string{"# a", "# b"}}))
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Zero(t, stats.Samples())
	assert.Empty(t, stats.Events)
}

func TestRun_AbortsOnFormatViolation(t *testing.T) {
	var out bytes.Buffer
	m := newMonitor(&out)

	lines := &lineSource{lines: []string{
		"1.0 10,00 Joules power/energy-pkg/",
		"2.0 12,34 Watts power/energy-pkg/",
		"3.0 10,00 Joules power/energy-pkg/",
	}}

	stats, err := m.Run(perf.NewReader(lines))
	require.Error(t, err)
	assert.ErrorIs(t, err, perf.ErrUnexpectedUnit)

	assert.Len(t, outputLines(&out), 1, "nothing is printed for or after the bad line")
	assert.Equal(t, 1, stats.Samples())
	assert.Equal(t, 2, lines.i, "reading stops at the bad line")
}

func TestRun_AbortsOnEmptyLine(t *testing.T) {
	var out bytes.Buffer
	_, err := newMonitor(&out).Run(perf.NewReader(&lineSource{lines: []string{""}}))
	assert.ErrorIs(t, err, perf.ErrShortLine)
}

func TestRun_PropagatesReadError(t *testing.T) {
	var out bytes.Buffer
	readErr := errors.New("rapl: read: broken")

	_, err := newMonitor(&out).Run(&sampleSource{
		samples: []types.Sample{{Event: "power/energy-pkg/", Energy: 1}},
		err:     readErr,
	})
	assert.ErrorIs(t, err, readErr)
	assert.Len(t, outputLines(&out), 1)
}

func TestRun_SeparateTotalsPerEvent(t *testing.T) {
	var out bytes.Buffer
	m := newMonitor(&out)
	m.Labeled = true

	stats, err := m.Run(&sampleSource{samples: []types.Sample{
		{Event: "power/energy-pkg/", Energy: 150},
		{Event: "power/energy-ram/", Energy: 2.5},
		{Event: "power/energy-pkg/", Energy: 50},
		{Event: "power/energy-ram/", Energy: 2.5},
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"energy-pkg: Current energy use: 150.00 joules. Since program start: 150.0 joules.",
		"energy-ram: Current energy use: 2.50 joules. Since program start: 2.5 joules.",
		"energy-pkg: Current energy use: 50.00 joules. Since program start: 200.0 joules. With this energy, you could play an MP3 song. 🎧",
		"energy-ram: Current energy use: 2.50 joules. Since program start: 5.0 joules.",
	}, outputLines(&out))

	require.Len(t, stats.Events, 2)
	assert.Equal(t, "power/energy-pkg/", stats.Events[0].Event)
	assert.Equal(t, types.Joules(200), stats.Events[0].Total)
	assert.Equal(t, "power/energy-ram/", stats.Events[1].Event)
	assert.Equal(t, types.Joules(5), stats.Events[1].Total)
	assert.Equal(t, 4, stats.Samples())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "energy-pkg", Label("power/energy-pkg/"))
	assert.Equal(t, "energy-gpu", Label("energy-gpu"))
}
