package perf

import (
	"strconv"
	"time"
)

const (
	defaultPerfPath = "perf"
	defaultEvent    = "power/energy-pkg/"
	minInterval     = 10 * time.Millisecond
)

// Config holds the perf invocation settings.
type Config struct {
	// Sudo prefixes the command with sudo.
	Sudo bool
	// PerfPath is the perf binary (looked up in PATH when not absolute).
	PerfPath string
	// Events are the perf events to sample, e.g. power/energy-pkg/ and power/energy-ram/.
	Events []string
	// Interval is the reporting interval (perf -I, whole milliseconds).
	Interval time.Duration
}

// DefaultConfig returns the settings for `sudo perf stat -I 1000 -e power/energy-pkg/ -a`.
func DefaultConfig() Config {
	return Config{
		Sudo:     true,
		PerfPath: defaultPerfPath,
		Events:   []string{defaultEvent},
		Interval: time.Second,
	}
}

func normalizeConfig(cfg Config) Config {
	normalized := cfg

	if normalized.PerfPath == "" {
		normalized.PerfPath = defaultPerfPath
	}

	events := make([]string, 0, len(cfg.Events))
	for _, e := range cfg.Events {
		if e != "" {
			events = append(events, e)
		}
	}
	if len(events) == 0 {
		events = append(events, defaultEvent)
	}
	normalized.Events = events

	if normalized.Interval == 0 {
		normalized.Interval = time.Second
	}

	return normalized
}

// Validate reports whether cfg can be turned into a perf command line.
func (c Config) Validate() error {
	if normalizeConfig(c).Interval < minInterval {
		return ErrBadInterval
	}
	return nil
}

// EventNames returns the events with defaults applied, in command-line order.
func (c Config) EventNames() []string { return normalizeConfig(c).Events }

// Argv returns the full child command line. Each event gets its own -e.
func (c Config) Argv() []string {
	n := normalizeConfig(c)

	args := make([]string, 0, 7+2*len(n.Events))
	if n.Sudo {
		args = append(args, "sudo")
	}
	args = append(args,
		n.PerfPath, "stat",
		"-I", strconv.FormatInt(n.Interval.Milliseconds(), 10),
	)
	for _, e := range n.Events {
		args = append(args, "-e", e)
	}
	return append(args, "-a")
}
