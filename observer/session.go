// Package observer keeps a client-side view of one loket channel in sync with
// the server and turns genuine calls into announcement requests.
// file: observer/session.go
package observer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-loket-queue/announcer"
	"go-loket-queue/logger"
	"go-loket-queue/models"
)

// ErrConnection marks a transient transport failure. Sessions always retry it.
var ErrConnection = errors.New("connection error")

// ReconnectDelay is the constant wait between connection attempts.
var ReconnectDelay = 3 * time.Second

// State is the connection state of a Session.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Announcer accepts announcement requests.
type Announcer interface {
	Enqueue(req announcer.Request)
}

// Session follows one loket channel until its context is cancelled.
type Session struct {
	loket     string
	url       string
	dialer    Dialer
	announcer Announcer
	delay     time.Duration

	// OnView, if set, is called with every recomputed view.
	OnView func(View)

	mu            sync.Mutex
	state         State
	view          View
	lastAnnounced string
}

// NewSession creates a session for loket under the websocket base URL
// (e.g. ws://host:8080/ws). ann may be nil for silent viewers.
func NewSession(baseURL, loket string, dialer Dialer, ann Announcer) *Session {
	if dialer == nil {
		dialer = WebsocketDialer{}
	}
	return &Session{
		loket:     loket,
		url:       strings.TrimRight(baseURL, "/") + "/loket/" + loket,
		dialer:    dialer,
		announcer: ann,
		delay:     ReconnectDelay,
		view:      View{Loket: loket},
	}
}

// Loket is the channel this session follows.
func (s *Session) Loket() string {
	return s.loket
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View returns the latest derived view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run connects, consumes messages and reconnects after a fixed delay until
// ctx is done. It returns ctx.Err().
func (s *Session) Run(ctx context.Context) error {
	for {
		s.setState(StateConnecting)
		err := s.runOnce(ctx)
		s.setState(StateClosed)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn.Printf("[Session.Run] loket %s: %v; reconnecting in %s", s.loket, err, s.delay)

		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Session) runOnce(ctx context.Context) error {
	conn, err := s.dialer.Dial(ctx, s.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	s.setState(StateOpen)
	logger.Info.Printf("[Session.runOnce] Connected to loket %s", s.loket)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: read loket %s: %v", ErrConnection, s.loket, err)
		}
		s.Handle(data)
	}
}

// Handle processes one raw message. Malformed messages are logged and ignored.
func (s *Session) Handle(data []byte) {
	msg, err := models.DecodeMessage(data)
	if err != nil {
		logger.Warn.Printf("[Session.Handle] loket %s: ignoring message: %v", s.loket, err)
		return
	}
	s.Apply(msg)
}

// Apply updates the view from a decoded message and enqueues an announcement
// for a newly called patient (update only) or a recall (always).
func (s *Session) Apply(msg models.Message) {
	var req *announcer.Request
	var view View
	var changed bool

	s.mu.Lock()
	switch msg.Type {
	case models.MessageInitial, models.MessageUpdate:
		s.view = buildView(s.loket, msg)
		view, changed = s.view, true
		if msg.Type == models.MessageUpdate {
			if called := s.view.Called; called != nil {
				key := called.AnnouncementKey()
				if key != s.lastAnnounced {
					s.lastAnnounced = key
					req = &announcer.Request{QueueNumber: called.QueueNumber, LoketNumber: s.loket}
				}
			}
		}
	case models.MessageRecall:
		req = &announcer.Request{QueueNumber: msg.Patient.QueueNumber, LoketNumber: s.loket}
	}
	s.mu.Unlock()

	if req != nil && s.announcer != nil {
		logger.Info.Printf("[Session.Apply] loket %s: announcing %s (%s)", s.loket, req.QueueNumber, msg.Type)
		s.announcer.Enqueue(*req)
	}
	if changed && s.OnView != nil {
		s.OnView(view)
	}
}
