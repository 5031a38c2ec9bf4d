//go:build linux

// Package rapl reads RAPL energy counters in-process through perf_event_open,
// without spawning perf. Events are described under
// /sys/bus/event_source/devices/power; each is opened system-wide on one CPU
// per package and the per-package deltas are summed.
package rapl

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ja7ad/joulewatch/pkg/perf"
	"github.com/ja7ad/joulewatch/pkg/types"
)

// Config selects the events and sampling interval.
type Config struct {
	// Root is the power PMU sysfs directory (DefaultRoot when empty).
	Root string
	// Events accepts perf names (power/energy-pkg/) or bare ones (energy-pkg).
	Events []string
	// Interval is the sampling window (1s when zero).
	Interval time.Duration
}

// syscall seams, replaced in tests
var (
	openCounter = func(typ uint32, config uint64, cpu int) (int, error) {
		attr := &unix.PerfEventAttr{
			Type:   typ,
			Config: config,
			Size:   uint32(unsafe.Sizeof(unix.PerfEventAttr{})),
		}
		return unix.PerfEventOpen(attr, -1, cpu, -1, unix.PERF_FLAG_FD_CLOEXEC)
	}
	readCounter = func(fd int) (uint64, error) {
		var buf [8]byte
		n, err := unix.Read(fd, buf[:])
		if err != nil {
			return 0, err
		}
		if n != len(buf) {
			return 0, ErrShortRead
		}
		return binary.NativeEndian.Uint64(buf[:]), nil
	}
	closeCounter = unix.Close
)

type counter struct {
	event string
	scale float64
	fds   []int
	last  []uint64
}

// delta returns the joules used since the previous call.
func (c *counter) delta() (types.Joules, error) {
	var ticks uint64
	for i, fd := range c.fds {
		now, err := readCounter(fd)
		if err != nil {
			return 0, fmt.Errorf("rapl: read %s: %w", c.event, err)
		}
		if now >= c.last[i] {
			ticks += now - c.last[i]
		}
		c.last[i] = now
	}
	return types.Joules(float64(ticks) * c.scale), nil
}

// Sampler yields one sample per event per interval until ctx is done.
type Sampler struct {
	ctx      context.Context
	ticker   *time.Ticker
	counters []*counter
	pending  []types.Sample
	cur      types.Sample
	err      error
	closed   bool
}

// Open resolves every event in sysfs, opens its counters and records the baseline.
func Open(ctx context.Context, cfg Config) (*Sampler, error) {
	root := cfg.Root
	if root == "" {
		root = DefaultRoot
	}
	events := cfg.Events
	if len(events) == 0 {
		events = perf.DefaultConfig().Events
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}

	typ, err := readPMUType(root)
	if err != nil {
		return nil, err
	}
	cpus, err := readCPUMask(root)
	if err != nil {
		return nil, err
	}

	s := &Sampler{ctx: ctx}
	for _, ev := range events {
		desc, err := readEvent(root, ev)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		c := &counter{event: ev, scale: desc.scale, last: make([]uint64, len(cpus))}
		s.counters = append(s.counters, c)

		for _, cpu := range cpus {
			fd, err := openCounter(typ, desc.config, cpu)
			if err != nil {
				_ = s.Close()
				return nil, openError(ev, cpu, err)
			}
			c.fds = append(c.fds, fd)
		}
		if _, err := c.delta(); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	s.ticker = time.NewTicker(interval)
	return s, nil
}

func openError(event string, cpu int, err error) error {
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: open %s on cpu %d: %w", perf.ErrPermission, event, cpu, err)
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.EINVAL), errors.Is(err, unix.EOPNOTSUPP):
		return fmt.Errorf("%w: open %s on cpu %d: %w", perf.ErrEventNotSupported, event, cpu, err)
	default:
		return fmt.Errorf("rapl: open %s on cpu %d: %w", event, cpu, err)
	}
}

// Next blocks until the next sample. After each tick it yields one sample
// per event, in Config.Events order. It returns false once ctx is done
// (Err stays nil) or a counter read fails.
func (s *Sampler) Next() bool {
	if len(s.pending) > 0 {
		s.cur, s.pending = s.pending[0], s.pending[1:]
		return true
	}
	if s.closed || s.err != nil {
		return false
	}

	select {
	case <-s.ctx.Done():
		return false
	case <-s.ticker.C:
	}

	for _, c := range s.counters {
		j, err := c.delta()
		if err != nil {
			s.err = err
			s.pending = nil
			return false
		}
		s.pending = append(s.pending, types.Sample{Event: c.event, Energy: j})
	}
	s.cur, s.pending = s.pending[0], s.pending[1:]
	return true
}

// Sample returns the sample read by the last successful Next.
func (s *Sampler) Sample() types.Sample { return s.cur }

// Err returns the read error that ended sampling, if any.
func (s *Sampler) Err() error { return s.err }

// Close releases all counters. It is idempotent.
func (s *Sampler) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ticker != nil {
		s.ticker.Stop()
	}

	var errs []error
	for _, c := range s.counters {
		for _, fd := range c.fds {
			if err := closeCounter(fd); err != nil {
				errs = append(errs, err)
			}
		}
		c.fds = nil
	}
	return errors.Join(errs...)
}
