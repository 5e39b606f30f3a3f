package draw

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/term"
)

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
const maxChunkSize = 1400

// Fallback dimensions when the terminal does not report a usable size.
const (
	FallbackWidth  = 80
	FallbackHeight = 24
)

// ChunkWriter accumulates a frame and writes it in chunks for optimal
// network flow (e.g. over SSH). Canvas.Render and the screen helpers write
// into it; Flush sends the frame.
type ChunkWriter struct {
	buf bytes.Buffer
	w   io.Writer
}

// Ensure ChunkWriter satisfies io.Writer.
var _ io.Writer = (*ChunkWriter)(nil)

// NewChunkWriter creates a ChunkWriter that writes to w.
func NewChunkWriter(w io.Writer) *ChunkWriter {
	return &ChunkWriter{w: w}
}

// Write buffers p until the next Flush.
func (cw *ChunkWriter) Write(p []byte) (n int, err error) {
	return cw.buf.Write(p)
}

// WriteString buffers s until the next Flush.
func (cw *ChunkWriter) WriteString(s string) (n int, err error) {
	return cw.buf.WriteString(s)
}

// Len returns the number of buffered bytes not yet flushed.
func (cw *ChunkWriter) Len() int {
	return cw.buf.Len()
}

// Flush writes the accumulated frame to the underlying writer, at most
// maxChunkSize bytes per write, then resets the buffer.
func (cw *ChunkWriter) Flush() error {
	defer cw.buf.Reset()
	data := cw.buf.Bytes()
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := cw.w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// TermSizeFunc is a function that returns the terminal dimensions.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc returns terminal size from os.Stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// TerminalSize asks sizeFunc for the terminal dimensions. Errors and
// zero sizes (some SSH clients report none) fall back to 80x24.
func TerminalSize(sizeFunc TermSizeFunc) (width, height int) {
	width, height, err := sizeFunc()
	if err != nil || width <= 0 || height <= 0 {
		return FallbackWidth, FallbackHeight
	}
	return width, height
}

// ClearScreen clears the terminal and moves cursor to top-left.
func ClearScreen(w io.Writer) {
	_, _ = io.WriteString(w, "\033[H\033[2J")
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	_, _ = io.WriteString(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor and resets colors.
func ShowCursor(w io.Writer) {
	_, _ = io.WriteString(w, "\033[0m\033[?25h")
}
