// Package announcer plays queue announcements one at a time, in order.
// file: announcer/sequencer.go
package announcer

import (
	"context"
	"sync"
	"time"

	"go-loket-queue/logger"
)

// Gap is the pause after each announcement, whether it finished or failed.
var Gap = 500 * time.Millisecond

// Request asks for one announcement.
type Request struct {
	QueueNumber string `json:"queueNumber"`
	LoketNumber string `json:"loketNumber"`
}

// Player speaks text. Play must return promptly once ctx is cancelled.
type Player interface {
	Play(ctx context.Context, text string) error
}

// Sequencer is a FIFO of requests with at most one playback in flight.
type Sequencer struct {
	player Player
	gap    time.Duration

	mu         sync.Mutex
	queue      []Request
	enabled    bool
	closed     bool
	processing bool
	speaking   bool
	generation uint64
	cancel     context.CancelFunc // in-flight playback
	stop       chan struct{}      // closed to abort the current worker's gap
	done       chan struct{}      // closed when the current worker exits
	played     uint64
}

// NewSequencer creates an enabled sequencer.
func NewSequencer(player Player) *Sequencer {
	return &Sequencer{player: player, gap: Gap, enabled: true}
}

// Enqueue appends a request and starts processing if idle. Requests are
// dropped while sound is disabled.
func (s *Sequencer) Enqueue(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.closed {
		logger.Debug.Printf("[Sequencer.Enqueue] Sound disabled, dropping %s", req.QueueNumber)
		return
	}
	s.queue = append(s.queue, req)
	if s.processing {
		return
	}

	s.processing = true
	if s.stop == nil {
		s.stop = make(chan struct{})
	}
	prev := s.done
	done := make(chan struct{})
	s.done = done
	go s.process(s.generation, s.stop, prev, done)
}

func (s *Sequencer) process(gen uint64, stop <-chan struct{}, prev <-chan struct{}, done chan struct{}) {
	defer close(done)
	if prev != nil {
		<-prev
	}

	for {
		s.mu.Lock()
		if gen != s.generation {
			s.mu.Unlock()
			return
		}
		if len(s.queue) == 0 {
			s.processing = false
			s.mu.Unlock()
			return
		}
		req := s.queue[0]
		s.queue = s.queue[1:]
		if s.cancel != nil {
			s.cancel()
		}
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.speaking = true
		s.mu.Unlock()

		text := RenderText(req)
		err := s.player.Play(ctx, text)
		cancel()

		s.mu.Lock()
		if gen != s.generation {
			// Disabled while playing; the completion is stale.
			s.mu.Unlock()
			return
		}
		s.cancel = nil
		s.speaking = false
		s.played++
		s.mu.Unlock()

		if err != nil {
			logger.Warn.Printf("[Sequencer.process] Playback of %q failed: %v", text, err)
		} else {
			logger.Info.Printf("[Sequencer.process] Announced: %s", text)
		}

		timer := time.NewTimer(s.gap)
		select {
		case <-timer.C:
		case <-stop:
			timer.Stop()
			return
		}
	}
}

// Disable purges pending requests and stops any playback in flight. It
// returns only after the worker has exited, so nothing plays afterwards.
// It must not be called from inside Player.Play.
func (s *Sequencer) Disable() {
	s.mu.Lock()
	s.enabled = false
	s.queue = nil
	s.generation++
	s.processing = false
	s.speaking = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
	logger.Info.Println("[Sequencer.Disable] Sound disabled")
}

// Enable re-arms the sequencer after Disable.
func (s *Sequencer) Enable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.enabled = true
	logger.Info.Println("[Sequencer.Enable] Sound enabled")
}

// Toggle flips between enabled and disabled and reports the new state.
func (s *Sequencer) Toggle() bool {
	if s.Enabled() {
		s.Disable()
		return false
	}
	s.Enable()
	return s.Enabled()
}

// Close disables the sequencer for good.
func (s *Sequencer) Close() {
	s.Disable()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Enabled reports whether requests are accepted.
func (s *Sequencer) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled && !s.closed
}

// Speaking reports whether a playback is in flight.
func (s *Sequencer) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// Pending is the number of queued requests not yet started.
func (s *Sequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Played counts finished playbacks.
func (s *Sequencer) Played() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played
}
