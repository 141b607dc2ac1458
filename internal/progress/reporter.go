// Package progress renders pending states in the terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback for batch registrations.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if isCI() {
		return &CIReporter{w: os.Stderr}
	}
	return &TerminalReporter{}
}

func isCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Registering proofs"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	w     io.Writer
	total int
}

func NewCIReporter(w io.Writer) *CIReporter {
	return &CIReporter{w: w}
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.w, "Registering %d files\n", total)
}

func (r *CIReporter) Update(current int, message string) {
	fmt.Fprintf(r.w, "[%d/%d] %s\n", current, r.total, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.w, "Batch registration complete")
}

// Spinner shows an indeterminate pending indicator, such as "Registering..."
// while a blockchain transaction is confirmed.
type Spinner struct {
	bar *progressbar.ProgressBar
}

// StartSpinner starts a spinner with the given label. In CI it prints the
// label once instead.
func StartSpinner(label string) *Spinner {
	if isCI() {
		fmt.Fprintln(os.Stderr, label)
		return &Spinner{}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	s := &Spinner{bar: bar}
	go s.spin()
	return s
}

func (s *Spinner) spin() {
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for range t.C {
		if s.bar.IsFinished() {
			return
		}
		_ = s.bar.Add(1)
	}
}

// Stop clears the spinner.
func (s *Spinner) Stop() {
	if s.bar != nil {
		_ = s.bar.Finish()
	}
}
