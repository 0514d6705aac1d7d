// Package notify shows finished answers as desktop notifications.
package notify

import (
	"log"
	"sync"
	"unicode/utf8"

	"mathsketch/internal/state"
)

const (
	appName = "MathSketch"
	// maxBody keeps long step-by-step answers from flooding the notification area.
	maxBody = 280
)

// note is one desktop notification. Replaces is the id of the previous
// answer's notification, 0 for none.
type note struct {
	Title    string
	Body     string
	Replaces uint32
	Urgent   bool
}

// Notifier forwards results to the desktop when enabled. Each answer replaces
// the previous one instead of stacking up.
type Notifier struct {
	Enabled bool
	send    func(note) (uint32, error)

	mu   sync.Mutex
	last uint32
}

func New(enabled bool) *Notifier {
	return &Notifier{Enabled: enabled, send: desktopNotify}
}

// Result posts r. Failures are logged and otherwise ignored.
func (n *Notifier) Result(r state.Result) {
	if !n.Enabled || r.Empty() {
		return
	}
	title := "Answer"
	if r.IsError {
		title = "Calculation failed"
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	id, err := n.send(note{Title: title, Body: Truncate(r.Text, maxBody), Replaces: n.last, Urgent: r.IsError})
	if err != nil {
		log.Printf("[NOTIFY] Desktop notification failed: %v", err)
		return
	}
	n.last = id
}

// Truncate shortens s to at most limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
