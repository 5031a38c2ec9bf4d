package report

import (
	"bufio"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/joulewatch/pkg/consumption"
)

func TestFormat_NoComparison(t *testing.T) {
	assert.Equal(t,
		"Current energy use: 12.35 joules. Since program start: 250.0 joules.",
		Format(12.345, 250.0, nil))
}

func TestFormat_WithComparison(t *testing.T) {
	c, ok := consumption.DefaultTable().Lookup(500)
	require.True(t, ok)

	assert.Equal(t,
		"Current energy use: 500.00 joules. Since program start: 500.0 joules. With this energy, you could crack a piñata. 🪅",
		Format(500, 500, &c))
}

func TestFormat_Rounding(t *testing.T) {
	assert.Equal(t,
		"Current energy use: 0.00 joules. Since program start: 0.0 joules.",
		Format(0, 0, nil))
	assert.Equal(t,
		"Current energy use: 3.10 joules. Since program start: 1234.6 joules.",
		Format(3.1, 1234.56, nil))
}

func TestWriter_OneLinePerSample(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteSample("", 100, 100, nil))
	c := consumption.Comparison{Threshold: 180, Symbol: "🎧", Description: "play an MP3 song"}
	require.NoError(t, w.WriteSample("", 100, 200, &c))

	assert.Equal(t,
		"Current energy use: 100.00 joules. Since program start: 100.0 joules.\n"+
			"Current energy use: 100.00 joules. Since program start: 200.0 joules. With this energy, you could play an MP3 song. 🎧\n",
		buf.String())
}

func TestWriter_FlushesBufferedOutput(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriterSize(&buf, 4096)
	w := NewWriter(bw)

	require.NoError(t, w.WriteSample("", 1, 1, nil))
	assert.Equal(t, "Current energy use: 1.00 joules. Since program start: 1.0 joules.\n", buf.String(),
		"line must reach the underlying writer without an explicit Flush")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriter_WriteError(t *testing.T) {
	err := NewWriter(failingWriter{}).WriteSample("", 1, 1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "report: write")
}

func TestWriter_Label(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteSample("energy-ram", 2.5, 2.5, nil))
	assert.Equal(t, "energy-ram: Current energy use: 2.50 joules. Since program start: 2.5 joules.\n", buf.String())
}
