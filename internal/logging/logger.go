// Package logging provides colored, leveled log output for the testmate CLI.
//
// All output functions write a prefixed, color-coded line. Debug output is
// suppressed unless verbose mode is enabled via SetVerbose(true). When a log
// file is opened with OpenFile, every line is also written there as JSON.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

var (
	mu      sync.Mutex
	verbose bool
	stdout  io.Writer = os.Stdout
	stderr  io.Writer = os.Stderr
)

// Color printers for each log level.
var (
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	debugPrefix   = color.New(color.FgBlue).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// SetOutput redirects console output. Nil writers restore the process
// stdout/stderr.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	stdout, stderr = out, errOut
}

// Output returns the writers console output currently goes to.
func Output() (out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	return stdout, stderr
}

// Info prints an informational message to stdout in blue.
func Info(msg string) {
	write(false, infoPrefix("[INFO]"), msg)
	fileLogger().Info(msg)
}

// Success prints a success message to stdout in green.
func Success(msg string) {
	write(false, successPrefix("[SUCCESS]"), msg)
	fileLogger().Info(msg, zap.Bool("success", true))
}

// Warn prints a warning message to stdout in yellow.
func Warn(msg string) {
	write(false, warnPrefix("[WARN]"), msg)
	fileLogger().Warn(msg)
}

// Error prints an error message to stderr in red.
func Error(msg string) {
	write(true, errorPrefix("[ERROR]"), msg)
	fileLogger().Error(msg)
}

// Debug prints a debug message to stdout in blue, only when verbose mode is enabled.
func Debug(msg string) {
	fileLogger().Debug(msg)
	mu.Lock()
	v := verbose
	mu.Unlock()
	if !v {
		return
	}
	write(false, debugPrefix("[DEBUG]"), msg)
}

func write(toStderr bool, prefix, msg string) {
	mu.Lock()
	defer mu.Unlock()
	w := stdout
	if toStderr {
		w = stderr
	}
	fmt.Fprintln(w, prefix+" "+msg)
}

// FormatDuration converts a duration in seconds to a human-readable string.
//
// Examples:
//
//	FormatDuration(0)    => "0s"
//	FormatDuration(45)   => "45s"
//	FormatDuration(150)  => "2m 30s"
//	FormatDuration(3661) => "1h 1m 1s"
func FormatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		m := seconds / 60
		s := seconds % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
