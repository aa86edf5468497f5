// file: announcer/player.go
package announcer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go-loket-queue/logger"
)

// LogPlayer writes announcements to the log and holds the speaker for
// Duration, standing in for audio on headless hosts.
type LogPlayer struct {
	Duration time.Duration
}

// Play logs text and waits Duration or until ctx is cancelled.
func (p LogPlayer) Play(ctx context.Context, text string) error {
	logger.Info.Printf("[LogPlayer] %s", text)
	if p.Duration <= 0 {
		return nil
	}
	timer := time.NewTimer(p.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CommandPlayer speaks through an external TTS program, passing the text as
// the last argument (e.g. "espeak -v id").
type CommandPlayer struct {
	Name string
	Args []string
}

// ParseCommandPlayer splits a command line such as TTS_COMMAND.
func ParseCommandPlayer(command string) (CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return CommandPlayer{}, errors.New("empty TTS command")
	}
	return CommandPlayer{Name: fields[0], Args: fields[1:]}, nil
}

// Play runs the command; cancelling ctx kills it.
func (p CommandPlayer) Play(ctx context.Context, text string) error {
	args := append(append([]string(nil), p.Args...), text)
	cmd := exec.CommandContext(ctx, p.Name, args...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%s: %w: %s", p.Name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
