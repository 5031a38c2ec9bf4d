package report

import (
	"fmt"
	"io"

	"github.com/ja7ad/joulewatch/pkg/consumption"
	"github.com/ja7ad/joulewatch/pkg/types"
)

// Format renders one sample line without a terminator. cmp may be nil.
func Format(sample, total types.Joules, cmp *consumption.Comparison) string {
	s := fmt.Sprintf("Current energy use: %.2f joules. Since program start: %.1f joules.",
		float64(sample), float64(total))
	if cmp != nil {
		s += fmt.Sprintf(" With this energy, you could %s. %s", cmp.Description, cmp.Symbol)
	}
	return s
}

type flusher interface {
	Flush() error
}

// Writer prints one line per sample and flushes after each, so the output
// can be watched live even through a buffered writer.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer printing to w.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// WriteSample writes Format(...) followed by a newline. A non-empty label
// is prepended as "label: ", used when several events are sampled at once.
func (w *Writer) WriteSample(label string, sample, total types.Joules, cmp *consumption.Comparison) error {
	line := Format(sample, total, cmp) + "\n"
	if label != "" {
		line = label + ": " + line
	}
	if _, err := io.WriteString(w.w, line); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	if f, ok := w.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("report: flush: %w", err)
		}
	}
	return nil
}
