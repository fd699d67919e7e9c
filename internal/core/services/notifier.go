package services

import (
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/tbr-cli/internal/logger"
)

// Notifier surfaces user-visible warnings at most once per failure
// class, so a flaky LLM or catalog does not flood the output during a
// batch. One Notifier is scoped to one ingestion run; a fresh run warns
// afresh.
type Notifier struct {
	mu   sync.Mutex
	out  io.Writer
	seen map[string]bool
}

// NewNotifier creates a notifier writing to out. A nil writer discards
// user-facing warnings (verbose logging still records every occurrence).
func NewNotifier(out io.Writer) *Notifier {
	if out == nil {
		out = io.Discard
	}
	return &Notifier{
		out:  out,
		seen: make(map[string]bool),
	}
}

// WarnOnce prints the formatted message the first time class is seen.
// Every occurrence is also recorded in the verbose log.
func (n *Notifier) WarnOnce(class, format string, args ...any) {
	logger.Warn(format, args...)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seen[class] {
		return
	}
	n.seen[class] = true
	fmt.Fprintf(n.out, "Warning: "+format+"\n", args...)
}

// Warned reports whether a warning for class has been surfaced.
func (n *Notifier) Warned(class string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.seen[class]
}
