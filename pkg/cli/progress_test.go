package cli

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSimpleProgressBasic(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(4)
	progress.Update(2)
	progress.Finish()

	output := buf.String()
	if !strings.Contains(output, "Applying:") {
		t.Error("Expected progress output to contain 'Applying:'")
	}
	if !strings.Contains(output, "(4/4)") && !strings.Contains(output, "(2/4)") {
		t.Errorf("output missing counts: %q", output)
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("Finish() should end the line")
	}
}

func TestSimpleProgressZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if buf.Len() != 0 {
		t.Errorf("output = %q, want none for an empty run", buf.String())
	}
}

func TestSimpleProgressError(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(100)
	progress.Error(fmt.Errorf("test error"))

	output := buf.String()
	if !strings.Contains(output, "Error:") || !strings.Contains(output, "test error") {
		t.Errorf("error output = %q", output)
	}
}

func TestSimpleProgressRecorder(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)
	progress.Start(4)

	progress.RecordOperation("create", "success")
	progress.RecordOperation("attach", "success")
	progress.RecordOperation("detach", "error")
	progress.ObserveReconcile("edit", "error", time.Millisecond)
	progress.ObserveReconcile("edit", "error", time.Millisecond)

	output := buf.String()
	if !strings.Contains(output, "(3/4) 1 failed") {
		t.Errorf("output = %q, want 3/4 with one failure", output)
	}
	if strings.Count(output, "\n") != 1 {
		t.Errorf("output = %q, want exactly one line ending", output)
	}
}

func TestSimpleProgressConcurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				progress.RecordOperation("edit", "success")
			}
		}()
	}
	wg.Wait()

	progress.Finish()

	if !strings.Contains(buf.String(), "(1000/1000)") {
		t.Error("Expected the bar to reach the total")
	}
}

func TestNewProgressReporterNilWriter(t *testing.T) {
	progress := NewProgressReporter(nil)
	if progress == nil {
		t.Fatal("NewProgressReporter(nil) should not return nil")
	}
	if progress.writer == nil {
		t.Error("writer should default to stderr")
	}
}
