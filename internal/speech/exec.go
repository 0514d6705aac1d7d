package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// espeak defaults; Voice.Rate and Voice.Pitch scale them.
const (
	baseWordsPerMinute = 175
	basePitch          = 50

	// stopGrace bounds the wait for output pipes after a cancelled command.
	stopGrace = 100 * time.Millisecond
)

// CommandEngine speaks through an espeak-compatible command line tool.
type CommandEngine struct {
	Command string
}

func NewCommandEngine(command string) *CommandEngine {
	return &CommandEngine{Command: command}
}

// Args builds the espeak argument list for u.
func (e *CommandEngine) Args(u Utterance) []string {
	lang := strings.ToLower(u.Voice.Language)
	if lang == "" {
		lang = "en-us"
	}
	pitch := int(basePitch * u.Voice.Pitch)
	if pitch > 99 {
		pitch = 99
	}
	return []string{
		"-v", lang,
		"-s", strconv.Itoa(int(baseWordsPerMinute * u.Voice.Rate)),
		"-p", strconv.Itoa(pitch),
		"--", u.Text,
	}
}

func (e *CommandEngine) Speak(ctx context.Context, u Utterance) error {
	if e.Command == "" {
		return errors.New("no speech command configured")
	}
	cmd := exec.CommandContext(ctx, e.Command, e.Args(u)...)
	// Wrapper scripts pipe into a player; cancelling must take the whole group.
	killGroupOnCancel(cmd)
	cmd.WaitDelay = stopGrace
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w: %s", e.Command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// NopEngine is used when speech is disabled. Utterances end immediately.
type NopEngine struct{}

func (NopEngine) Speak(context.Context, Utterance) error { return nil }
