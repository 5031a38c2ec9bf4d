package rapl

import "errors"

var (
	// ErrNoPowerPMU indicates that the kernel exposes no "power" PMU
	// (no RAPL driver, or not an Intel/AMD CPU).
	ErrNoPowerPMU = errors.New("rapl: no power PMU")

	// ErrBadEventConfig indicates an events/<name> file that is not "event=0x..".
	ErrBadEventConfig = errors.New("rapl: unexpected event config")

	// ErrShortRead indicates a counter read that returned fewer than 8 bytes.
	ErrShortRead = errors.New("rapl: short counter read")
)
