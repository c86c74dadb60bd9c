package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var out syncBuffer
	s := newSpinnerWithContext(context.Background(), &out, "Rendering SVG...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Rendering SVG...") {
		t.Errorf("spinner output = %q", out.String())
	}
	if !s.Canceled() {
		t.Error("Stop should cancel the spinner context")
	}
}

func TestSpinnerParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, &syncBuffer{}, "waiting")
	s.Start()
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after parent cancellation")
	}
	if !s.Canceled() {
		t.Error("spinner should report cancellation")
	}
}

func TestSpinnerStop(t *testing.T) {
	tests := []struct {
		name string
		run  func(s *Spinner)
		want string
	}{
		{"twice", func(s *Spinner) { s.Start(); s.Stop(); s.Stop() }, ""},
		{"before start", func(s *Spinner) { s.Stop() }, ""},
		{"success", func(s *Spinner) { s.Start(); s.StopWithSuccess("done") }, iconSuccess + " done"},
		{"error", func(s *Spinner) { s.Start(); s.StopWithError("failed") }, iconError + " failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out syncBuffer
			tt.run(newSpinnerWithContext(context.Background(), &out, "working"))
			if tt.want != "" && !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}
