//go:build linux

package rapl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ja7ad/joulewatch/pkg/perf"
)

// DefaultRoot is where the kernel describes the RAPL PMU.
const DefaultRoot = "/sys/bus/event_source/devices/power"

// eventDesc is what sysfs says about one energy event.
type eventDesc struct {
	config uint64
	scale  float64 // joules per counter tick
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// shortName turns "power/energy-pkg/" into "energy-pkg"; bare names pass through.
func shortName(event string) string {
	return strings.TrimSuffix(strings.TrimPrefix(event, "power/"), "/")
}

func readPMUType(root string) (uint32, error) {
	s, err := readTrimmed(filepath.Join(root, "type"))
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return 0, fmt.Errorf("%w: %v", perf.ErrPermission, err)
		}
		return 0, fmt.Errorf("%w: %v", ErrNoPowerPMU, err)
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: type %q", ErrNoPowerPMU, s)
	}
	return uint32(v), nil
}

func readEvent(root, event string) (eventDesc, error) {
	name := shortName(event)
	base := filepath.Join(root, "events", name)

	unit, err := readTrimmed(base + ".unit")
	if err != nil {
		return eventDesc{}, fmt.Errorf("%w: %s: %v", perf.ErrEventNotSupported, event, err)
	}
	if unit != "Joules" {
		return eventDesc{}, fmt.Errorf("%w: %s reports %q", perf.ErrUnexpectedUnit, event, unit)
	}

	s, err := readTrimmed(base + ".scale")
	if err != nil {
		return eventDesc{}, fmt.Errorf("%w: %s: %v", perf.ErrEventNotSupported, event, err)
	}
	scale, err := strconv.ParseFloat(s, 64)
	if err != nil || scale <= 0 {
		return eventDesc{}, fmt.Errorf("%w: %s scale %q", ErrBadEventConfig, event, s)
	}

	cfg, err := readTrimmed(base)
	if err != nil {
		return eventDesc{}, fmt.Errorf("%w: %s: %v", perf.ErrEventNotSupported, event, err)
	}
	config, err := parseEventConfig(cfg)
	if err != nil {
		return eventDesc{}, fmt.Errorf("%s: %w", event, err)
	}

	return eventDesc{config: config, scale: scale}, nil
}

// parseEventConfig parses "event=0x02".
func parseEventConfig(s string) (uint64, error) {
	v, ok := strings.CutPrefix(s, "event=")
	if !ok || strings.Contains(v, ",") {
		return 0, fmt.Errorf("%w: %q", ErrBadEventConfig, s)
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadEventConfig, s)
	}
	return n, nil
}

// readCPUMask returns one CPU per package. Without a cpumask file, CPU 0 is used.
func readCPUMask(root string) ([]int, error) {
	s, err := readTrimmed(filepath.Join(root, "cpumask"))
	if errors.Is(err, fs.ErrNotExist) {
		return []int{0}, nil
	}
	if err != nil {
		return nil, err
	}
	return parseCPUList(s)
}

// parseCPUList parses the kernel list format, e.g. "0", "0,18" or "0-1,4".
func parseCPUList(s string) ([]int, error) {
	var cpus []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		a, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("rapl: cpumask %q: %w", s, err)
		}
		b := a
		if isRange {
			if b, err = strconv.Atoi(hi); err != nil || b < a {
				return nil, fmt.Errorf("rapl: cpumask %q: bad range %q", s, part)
			}
		}
		for c := a; c <= b; c++ {
			cpus = append(cpus, c)
		}
	}
	if len(cpus) == 0 {
		return nil, fmt.Errorf("rapl: empty cpumask")
	}
	return cpus, nil
}
