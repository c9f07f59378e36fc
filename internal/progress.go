package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ProgressStep is one stage of a multi-stage command, e.g. parse then store
type ProgressStep struct {
	Message string
	Fn      func() error
}

// ProgressCounter counts finished units of work; safe for concurrent use
type ProgressCounter struct {
	total int
	done  atomic.Int64
}

// NewProgressCounter creates a counter out of total
func NewProgressCounter(total int) *ProgressCounter {
	return &ProgressCounter{total: total}
}

// Inc marks one more unit done
func (c *ProgressCounter) Inc() {
	c.done.Add(1)
}

// Done returns the number of finished units
func (c *ProgressCounter) Done() int {
	return int(c.done.Load())
}

func (c *ProgressCounter) String() string {
	return fmt.Sprintf("%d/%d", c.Done(), c.total)
}

// spinner redraws one status line on w until the wrapped work returns
type spinner struct {
	w        io.Writer
	interval time.Duration
	label    func() string
}

func (s *spinner) run(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	stop := make(chan struct{})
	drawn := make(chan struct{})

	go func() {
		defer close(drawn)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				fmt.Fprintf(s.w, "\r%s %s", progressStyle.Render(spinnerFrames[i%len(spinnerFrames)]), s.label())
			}
		}
	}()

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		close(stop)
		<-drawn
		if err != nil {
			fmt.Fprintf(s.w, "\r%s %s\n", errorStyle.Render("✗"), s.label())
			return err
		}
		fmt.Fprintf(s.w, "\r%s %s\n", successStyle.Render("✓"), s.label())
		return nil
	case <-ctx.Done():
		<-drawn
		fmt.Fprintln(s.w)
		return ctx.Err()
	}
}

func newSpinner(label func() string) *spinner {
	return &spinner{w: os.Stderr, interval: 100 * time.Millisecond, label: label}
}

// ShowProgress runs fn behind a spinner on terminals, otherwise logs message and runs it
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogInfo(message)
		return fn()
	}
	return newSpinner(func() string { return message }).run(ctx, fn)
}

// ShowCountedProgress is ShowProgress with a live "done/total" suffix.
// fn receives the counter and calls Inc as units finish, from any goroutine.
func ShowCountedProgress(ctx context.Context, message string, total int, fn func(*ProgressCounter) error) error {
	counter := NewProgressCounter(total)
	if !isTerminal(os.Stderr) {
		LogInfo("%s (%d)", message, total)
		err := fn(counter)
		LogDebug("%s: %s finished", message, counter)
		return err
	}
	return newSpinner(func() string { return fmt.Sprintf("%s (%s)", message, counter) }).
		run(ctx, func() error { return fn(counter) })
}

// ShowProgressWithSteps runs steps in order, stopping at the first failure
func ShowProgressWithSteps(ctx context.Context, steps []ProgressStep) error {
	for i, step := range steps {
		msg := fmt.Sprintf("[%d/%d] %s", i+1, len(steps), step.Message)
		if err := ShowProgress(ctx, msg, step.Fn); err != nil {
			return fmt.Errorf("%s: %w", step.Message, err)
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// printStatus writes message with a styled glyph on terminals and a plain prefix elsewhere
func printStatus(w io.Writer, style lipgloss.Style, glyph, plain, message string) {
	if isTerminal(w) {
		fmt.Fprintf(w, "%s %s\n", style.Render(glyph), message)
		return
	}
	fmt.Fprintf(w, "%s%s\n", plain, message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	printStatus(os.Stdout, successStyle, "✓", "", message)
}

// PrintError prints an error message
func PrintError(message string) {
	printStatus(os.Stderr, errorStyle, "✗", "", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	printStatus(os.Stdout, progressStyle, "ℹ", "", message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	printStatus(os.Stderr, warningStyle, "⚠", "WARNING: ", message)
}
