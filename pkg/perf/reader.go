package perf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ja7ad/joulewatch/pkg/types"
)

// maxDiagLines bounds how much of an "Error:" block is collected.
const maxDiagLines = 16

// LineSource is a blocking, pull-based sequence of text lines.
// *Stream implements it.
type LineSource interface {
	Next() bool
	Line() string
	Err() error
}

// Reader turns perf output lines into samples. The first parse error ends
// the sequence; it is reported by Err.
type Reader struct {
	src     LineSource
	events  []string
	cur     types.Sample
	samples int
	err     error
	done    bool
}

// NewReader reads samples for events from src (power/energy-pkg/ when none are given).
func NewReader(src LineSource, events ...string) *Reader {
	return &Reader{src: src, events: events}
}

// Next advances to the next sample, skipping header lines.
func (r *Reader) Next() bool {
	if r.done {
		return false
	}
	for r.src.Next() {
		line := r.src.Line()
		s, skip, err := ParseLine(line, r.events...)
		if err != nil {
			if r.samples == 0 {
				err = r.diagnose(line, err)
			}
			r.err = err
			r.done = true
			return false
		}
		if skip {
			continue
		}
		r.cur = s
		r.samples++
		return true
	}
	r.err = r.src.Err()
	r.done = true
	return false
}

// Sample returns the sample read by the last successful Next.
func (r *Reader) Sample() types.Sample { return r.cur }

// Err returns the parse or read error that ended the sequence, if any.
func (r *Reader) Err() error { return r.err }

// diagnose handles perf's multi-line startup errors, which begin with a
// bare "Error:" header and explain the cause on the following lines.
func (r *Reader) diagnose(first string, err error) error {
	if !strings.HasSuffix(strings.TrimSpace(first), ":") {
		return err
	}
	lines := []string{strings.TrimSpace(first)}
	for i := 0; i < maxDiagLines && r.src.Next(); i++ {
		if l := strings.TrimSpace(r.src.Line()); l != "" {
			lines = append(lines, l)
		}
	}
	text := strings.Join(lines, " ")
	diag := Classify(text)
	if diag == nil || errors.Is(err, diag) {
		return fmt.Errorf("%w: %s", err, text)
	}
	return fmt.Errorf("%w: %s", diag, text)
}
