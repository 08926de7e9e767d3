// Package logger provides namespaced debug loggers controlled by the DEBUG
// environment variable.
//
// DEBUG accepts a comma separated list of namespace patterns:
//
//	DEBUG=*                      enable every logger
//	DEBUG=workflow:*             enable all workflow loggers
//	DEBUG=workflow:*,-workflow:key_casing
//	                             enable workflow loggers except key_casing
//
// Output goes to stderr as "namespace message +elapsed".
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger writes debug output for a single namespace.
type Logger struct {
	namespace string
	enabled   bool

	mu   sync.Mutex
	last time.Time
}

var (
	output   io.Writer = os.Stderr
	outputMu sync.Mutex
)

// New creates a logger for namespace. Whether it is enabled is decided once,
// from DEBUG at creation time.
func New(namespace string) *Logger {
	return &Logger{
		namespace: namespace,
		enabled:   isEnabled(namespace, os.Getenv("DEBUG")),
	}
}

// Enabled reports whether the logger produces output. Callers use it to skip
// expensive formatting.
func (l *Logger) Enabled() bool {
	return l.enabled
}

// Printf formats like fmt.Printf.
func (l *Logger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprintf(format, args...))
}

// Print concatenates its arguments like fmt.Sprint.
func (l *Logger) Print(args ...any) {
	if !l.enabled {
		return
	}
	l.write(fmt.Sprint(args...))
}

func (l *Logger) write(msg string) {
	l.mu.Lock()
	now := time.Now()
	var elapsed time.Duration
	if !l.last.IsZero() {
		elapsed = now.Sub(l.last)
	}
	l.last = now
	l.mu.Unlock()

	outputMu.Lock()
	defer outputMu.Unlock()
	fmt.Fprintf(output, "%s %s +%s\n", l.namespace, msg, formatElapsed(elapsed))
}

func formatElapsed(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.String()
	}
}

// isEnabled matches namespace against the DEBUG patterns. Exclusions
// (prefixed with "-") win over inclusions.
func isEnabled(namespace, debug string) bool {
	if debug == "" {
		return false
	}
	enabled := false
	for _, raw := range strings.Split(debug, ",") {
		pattern := strings.TrimSpace(raw)
		if pattern == "" {
			continue
		}
		if excluded, ok := strings.CutPrefix(pattern, "-"); ok {
			if matchPattern(namespace, excluded) {
				return false
			}
			continue
		}
		if matchPattern(namespace, pattern) {
			enabled = true
		}
	}
	return enabled
}

// matchPattern supports a single trailing or leading "*" wildcard, or an
// exact match.
func matchPattern(namespace, pattern string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(namespace, strings.TrimSuffix(pattern, "*"))
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(namespace, strings.TrimPrefix(pattern, "*"))
	default:
		return namespace == pattern
	}
}
