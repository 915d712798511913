// Package tts speaks assistant replies aloud through whatever speech
// synthesizer the host provides.
package tts

import (
	"context"
	"log/slog"
	"os/exec"
)

// Speaker voices a piece of text.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Available() bool
}

// synthCommands lists known CLI synthesizers in preference order.
var synthCommands = []string{"say", "espeak-ng", "espeak"}

// ExecSpeaker shells out to the first synthesizer found on PATH.
type ExecSpeaker struct {
	binary string
}

// NewExecSpeaker probes PATH for a synthesizer. The returned speaker reports
// Available() == false when none is installed.
func NewExecSpeaker() *ExecSpeaker {
	for _, name := range synthCommands {
		if path, err := exec.LookPath(name); err == nil {
			slog.Debug("tts synthesizer found", "binary", path)
			return &ExecSpeaker{binary: path}
		}
	}
	return &ExecSpeaker{}
}

// Available reports whether a synthesizer was found.
func (s *ExecSpeaker) Available() bool { return s.binary != "" }

// Speak voices text, blocking until playback completes.
func (s *ExecSpeaker) Speak(ctx context.Context, text string) error {
	if s.binary == "" || text == "" {
		return nil
	}
	return exec.CommandContext(ctx, s.binary, text).Run()
}
