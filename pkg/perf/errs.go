package perf

import "errors"

var (
	// ErrNoCommand indicates Start was called with an empty argv.
	ErrNoCommand = errors.New("perf: empty command")

	// ErrBadInterval indicates an interval below perf's 10 ms minimum.
	ErrBadInterval = errors.New("perf: interval must be >= 10ms")

	// ErrShortLine indicates a non-comment line with fewer than four fields.
	ErrShortLine = errors.New("perf: short line")

	// ErrBadCount indicates a counter value that is not a number
	// (e.g. "<not counted>" or "12,3,4").
	ErrBadCount = errors.New("perf: bad count")

	// ErrUnexpectedUnit indicates a unit other than Joules.
	ErrUnexpectedUnit = errors.New("perf: unexpected unit")

	// ErrUnexpectedEvent indicates an event name that was not requested.
	ErrUnexpectedEvent = errors.New("perf: unexpected event")

	// ErrEventNotSupported indicates the kernel or CPU has no such energy counter
	// ("<not supported>", "event syntax error", ENOENT/EINVAL from perf_event_open).
	ErrEventNotSupported = errors.New("perf: event not supported")

	// ErrPermission indicates missing privileges for system-wide energy counters.
	// Run as root, via sudo, or lower kernel.perf_event_paranoid.
	ErrPermission = errors.New("perf: missing permission")

	// ErrToolNotFound indicates that perf (or sudo) is not installed.
	ErrToolNotFound = errors.New("perf: tool not found")
)
