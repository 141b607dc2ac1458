package progress

import (
	"bytes"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewCIReporter(&buf)
	r.Start(2)
	r.Update(1, "a.txt")
	r.Update(2, "b.txt")
	r.Finish()

	want := "Registering 2 files\n[1/2] a.txt\n[2/2] b.txt\nBatch registration complete\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter().(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}

func TestSpinnerInCI(t *testing.T) {
	t.Setenv("CI", "true")
	s := StartSpinner("Registering...")
	s.Stop()
}
