// Package perf runs `perf stat` in interval mode against a RAPL energy
// counter and turns its text output into per-window energy samples.
//
// Overview
//
//   - Config / Argv: builds the child command line. The defaults give
//
//     sudo perf stat -I 1000 -e power/energy-pkg/ -a
//
//   - Start(ctx, argv) (*Stream, error): spawns the child with stdout and
//     stderr both attached to the write end of one pipe, so perf's report
//     (which it prints on stderr) and any error text arrive on a single
//     stream in order.
//
//   - Stream: Next/Line/Err like bufio.Scanner, plus Close which releases
//     the pipe and reaps the child. Always defer Close.
//
//   - ParseLine(line, events...): returns the event and energy of one
//     interval line, skip=true for "#" header lines, or an error for
//     anything else.
//
//   - Reader: wraps a Stream (or any LineSource) and yields types.Sample
//     values. perf prints one line per event per interval, so several -e
//     events interleave on the stream.
//
// Output format
//
// perf prints one line per interval:
//
//	#           time             counts   unit events
//	     1.001034860              12,34 Joules power/energy-pkg/
//
// The count uses the decimal separator of the C locale perf was built
// against, which is often a comma. ParseLine accepts both.
//
// Errors (errs.go)
//
// Any unexpected layout is an error. There is no partial recovery: a
// changed output format or an unsupported counter means every further
// sample would be wrong too. Known perf and sudo failure text is mapped to
// ErrPermission, ErrEventNotSupported or ErrToolNotFound (see Classify);
// perf's multi-line "Error:" blocks are read in full before classifying.
//
// The rapl sub-package reads the same counters in-process through
// perf_event_open and reports the same sentinels.
//
// Permissions
//
// System-wide RAPL events need root or kernel.perf_event_paranoid <= 0.
// Config.Sudo prefixes the command with sudo; when sudo or perf is
// missing, the error text shows up on the stream and the Reader reports
// it as one of the sentinels above.
package perf
