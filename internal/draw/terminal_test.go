package draw

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type recordingWriter struct {
	writes []int
	buf    bytes.Buffer
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, len(p))
	return w.buf.Write(p)
}

func TestChunkWriterFlushSplitsFrames(t *testing.T) {
	rw := &recordingWriter{}
	cw := NewChunkWriter(rw)

	frame := strings.Repeat("x", maxChunkSize*2+10)
	cw.WriteString(frame)
	if cw.Len() != len(frame) {
		t.Fatalf("Len = %d", cw.Len())
	}
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(rw.writes) != 3 || rw.writes[0] != maxChunkSize || rw.writes[2] != 10 {
		t.Fatalf("writes = %v", rw.writes)
	}
	if rw.buf.String() != frame || cw.Len() != 0 {
		t.Fatalf("frame not written intact")
	}

	if err := cw.Flush(); err != nil || len(rw.writes) != 3 {
		t.Fatalf("empty flush should not write")
	}
}

func TestTerminalSizeFallback(t *testing.T) {
	tests := []struct {
		name string
		fn   TermSizeFunc
		w, h int
	}{
		{"reported", func() (int, int, error) { return 120, 40, nil }, 120, 40},
		{"error", func() (int, int, error) { return 0, 0, errors.New("not a tty") }, FallbackWidth, FallbackHeight},
		{"zero", func() (int, int, error) { return 0, 0, nil }, FallbackWidth, FallbackHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w, h := TerminalSize(tt.fn); w != tt.w || h != tt.h {
				t.Errorf("TerminalSize = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}
