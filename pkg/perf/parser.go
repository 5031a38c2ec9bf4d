package perf

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ja7ad/joulewatch/pkg/types"
)

const unitJoules = "Joules"

// Phrases perf and sudo print when they cannot start sampling.
var diagnostics = []struct {
	err     error
	phrases []string
}{
	{ErrPermission, []string{
		"permission",
		"perf_event_paranoid",
		"access to performance monitoring",
		"a password is required",
		"not in the sudoers",
		"operation not permitted",
	}},
	{ErrEventNotSupported, []string{
		"event syntax error",
		"not supported",
		"unknown event",
		"cannot find pmu",
	}},
	{ErrToolNotFound, []string{
		"command not found",
		"perf not found",
	}},
}

// Classify maps perf/sudo error text to ErrPermission, ErrEventNotSupported
// or ErrToolNotFound. It returns nil for text it does not recognize.
func Classify(text string) error {
	lower := strings.ToLower(text)
	for _, d := range diagnostics {
		for _, p := range d.phrases {
			if strings.Contains(lower, p) {
				return d.err
			}
		}
	}
	return nil
}

// ParseLine parses one line of `perf stat -I` output.
// Header lines starting with '#' return skip=true. Every other line must
// look like `<time> <count> Joules <event> ...` where event is one of
// events (power/energy-pkg/ when none are given); trailing fields are ignored.
func ParseLine(line string, events ...string) (sample types.Sample, skip bool, err error) {
	if strings.HasPrefix(line, "#") {
		return types.Sample{}, true, nil
	}
	if len(events) == 0 {
		events = []string{defaultEvent}
	}

	fields := strings.Fields(line)

	// "<not counted>" / "<not supported>" span two fields.
	if len(fields) >= 2 && strings.HasPrefix(fields[1], "<") {
		count := fields[1]
		for i := 2; i < len(fields) && !strings.HasSuffix(count, ">"); i++ {
			count += " " + fields[i]
		}
		if count == "<not supported>" {
			return types.Sample{}, false, fmt.Errorf("%w: %w: %q", ErrBadCount, ErrEventNotSupported, line)
		}
		return types.Sample{}, false, fmt.Errorf("%w: %q", ErrBadCount, line)
	}

	if len(fields) < 4 {
		return types.Sample{}, false, lineError(ErrShortLine, line)
	}
	if fields[2] != unitJoules {
		return types.Sample{}, false, lineError(
			fmt.Errorf("%w: got %q, want %q", ErrUnexpectedUnit, fields[2], unitJoules), line)
	}
	if !slices.Contains(events, fields[3]) {
		return types.Sample{}, false, fmt.Errorf("%w: got %q, want one of %q in %q", ErrUnexpectedEvent, fields[3], events, line)
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(fields[1], ",", "."), 64)
	if err != nil {
		return types.Sample{}, false, fmt.Errorf("%w: %q: %v", ErrBadCount, fields[1], err)
	}
	return types.Sample{Event: fields[3], Energy: types.Joules(v)}, false, nil
}

// lineError wraps base with the line text, adding the diagnostic sentinel
// when the line is a known perf/sudo error message.
func lineError(base error, line string) error {
	if diag := Classify(line); diag != nil {
		return fmt.Errorf("%w: %w: %q", diag, base, line)
	}
	return fmt.Errorf("%w: %q", base, line)
}
