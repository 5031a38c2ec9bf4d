//go:build linux

package perf

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// waitDelay bounds how long Close waits for the child after SIGTERM before killing it.
const waitDelay = 2 * time.Second

// Stream is the combined stdout+stderr of a running child, read line by line.
type Stream struct {
	cmd  *exec.Cmd
	r    *os.File
	sc   *bufio.Scanner
	line string
	err  error

	drained  bool
	closed   bool
	closeErr error
}

// Start launches argv with stderr merged into stdout.
// Cancelling ctx sends SIGTERM to the child (sudo relays it to perf).
func Start(ctx context.Context, argv []string) (*Stream, error) {
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("perf: pipe: %w", err)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = w
	cmd.Stderr = w
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return nil, fmt.Errorf("perf: start %s: %w", argv[0], err)
	}
	// The child owns its copy of the write end; ours must go or EOF never comes.
	_ = w.Close()

	return &Stream{cmd: cmd, r: r, sc: bufio.NewScanner(r)}, nil
}

// Next advances to the next line, blocking until the child writes one.
// It returns false at end of stream or on a read error (see Err).
func (s *Stream) Next() bool {
	if s.closed || s.drained {
		return false
	}
	if s.sc.Scan() {
		s.line = s.sc.Text()
		return true
	}
	s.drained = true
	s.err = s.sc.Err()
	return false
}

// Line returns the most recent line read by Next, without the terminator.
func (s *Stream) Line() string { return s.line }

// Err returns the first non-EOF read error.
func (s *Stream) Err() error {
	if s.err != nil {
		return fmt.Errorf("perf: read: %w", s.err)
	}
	return nil
}

// Pid returns the child's process id.
func (s *Stream) Pid() int { return s.cmd.Process.Pid }

// ExitCode returns the child's exit code, or -1 if it has not been reaped
// or was terminated by a signal.
func (s *Stream) ExitCode() int {
	if s.cmd.ProcessState == nil {
		return -1
	}
	return s.cmd.ProcessState.ExitCode()
}

// Close releases the pipe and reaps the child. A child still running
// (stream not drained) is sent SIGTERM first. The child's exit status is
// not an error: the stream simply ended. Close is idempotent.
func (s *Stream) Close() error {
	if s.closed {
		return s.closeErr
	}
	s.closed = true

	if !s.drained {
		_ = s.cmd.Process.Signal(syscall.SIGTERM)
	}

	rerr := s.r.Close()
	werr := s.cmd.Wait()

	var exitErr *exec.ExitError
	switch {
	case werr == nil, errors.As(werr, &exitErr):
	case errors.Is(werr, context.Canceled), errors.Is(werr, context.DeadlineExceeded):
		// the child was stopped through ctx
	default:
		s.closeErr = fmt.Errorf("perf: wait: %w", werr)
		return s.closeErr
	}

	if rerr != nil {
		s.closeErr = fmt.Errorf("perf: close: %w", rerr)
	}
	return s.closeErr
}
