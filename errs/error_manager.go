// Package errs provides the accumulating diagnostic sink shared by the
// parser and the resolver.
package errs

import (
	"fmt"
	"strings"

	"lumenscript/token"
)

// Manager accumulates formatted diagnostics across a single compilation
// stage. Each Push appends one line to the running message and sets a
// sticky has-errors bit; the stage's caller reads HasErrors/Message once
// the stage finishes.
type Manager struct {
	message   strings.Builder
	hasErrors bool
}

// Push records one diagnostic at position, formatted like fmt.Sprintf.
func (m *Manager) Push(position token.SourcePosition, format string, args ...any) {
	m.hasErrors = true
	fmt.Fprintf(&m.message, "\n%s%s Error: ", position.SourceName, position)
	fmt.Fprintf(&m.message, format, args...)
}

// HasErrors reports whether any diagnostic has been pushed.
func (m *Manager) HasErrors() bool {
	return m.hasErrors
}

// Message returns the accumulated multi-line diagnostic text.
func (m *Manager) Message() string {
	return m.message.String()
}

// Error implements the error interface so a Manager's accumulated message
// can be returned directly as a Go error once a stage completes.
func (m *Manager) Error() string {
	return m.message.String()
}
