// Package speech narrates result text, one utterance at a time.
package speech

import (
	"context"
	"log"
	"sync"
)

// State of the announcer as observed by the overlay.
type State int

const (
	Silent State = iota
	Speaking
)

func (s State) String() string {
	if s == Speaking {
		return "speaking"
	}
	return "silent"
}

// Voice is the fixed delivery applied to every utterance.
type Voice struct {
	Language string
	Rate     float64
	Pitch    float64
}

func DefaultVoice() Voice {
	return Voice{Language: "en-US", Rate: 1, Pitch: 1}
}

type Utterance struct {
	Text  string
	Voice Voice
}

// Engine speaks one utterance and returns when it ends. It must return
// promptly once ctx is cancelled.
type Engine interface {
	Speak(ctx context.Context, u Utterance) error
}

// Announcer owns the engine exclusively. Announce and Stop are serialized;
// each utterance carries a generation number so a finishing stale utterance
// never flips the state of a newer one.
type Announcer struct {
	engine Engine
	voice  Voice

	// OnStateChange is called outside of any lock, possibly from the
	// utterance goroutine.
	OnStateChange func(State)

	op sync.Mutex // serializes Announce/Stop

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAnnouncer(engine Engine, voice Voice) *Announcer {
	return &Announcer{engine: engine, voice: voice}
}

func (a *Announcer) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Announce stops the active utterance, waits for it to wind down and then
// starts speaking text.
func (a *Announcer) Announce(text string) {
	a.op.Lock()
	defer a.op.Unlock()

	a.halt()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.cancel, a.done = cancel, done
	a.mu.Unlock()

	go a.run(ctx, gen, done, Utterance{Text: text, Voice: a.voice})
}

// Stop cancels the active utterance, if any, and goes Silent.
func (a *Announcer) Stop() {
	a.op.Lock()
	defer a.op.Unlock()
	a.halt()
}

// Close releases the engine on teardown.
func (a *Announcer) Close() { a.Stop() }

// halt must be called with op held.
func (a *Announcer) halt() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	if cancel == nil {
		a.mu.Unlock()
		return
	}
	a.gen++
	a.cancel, a.done = nil, nil
	changed := a.state != Silent
	a.state = Silent
	notify := a.OnStateChange
	a.mu.Unlock()

	cancel()
	<-done
	if changed && notify != nil {
		notify(Silent)
	}
}

func (a *Announcer) run(ctx context.Context, gen uint64, done chan struct{}, u Utterance) {
	defer close(done)
	a.transition(gen, Speaking)
	err := a.engine.Speak(ctx, u)
	if err != nil && ctx.Err() == nil {
		log.Printf("[SPEECH] Utterance failed: %v", err)
	}
	a.transition(gen, Silent)
}

func (a *Announcer) transition(gen uint64, to State) {
	a.mu.Lock()
	if gen != a.gen || a.state == to {
		a.mu.Unlock()
		return
	}
	a.state = to
	var release context.CancelFunc
	if to == Silent {
		release = a.cancel
		a.cancel, a.done = nil, nil
	}
	notify := a.OnStateChange
	a.mu.Unlock()
	if release != nil {
		release()
	}
	if notify != nil {
		notify(to)
	}
}
