package session

import (
	"context"
	"sync"
)

type ticket struct {
	token  uint64
	cancel context.CancelFunc
}

// Sequencer orders requests per panel. Starting a request supersedes the previous
// one for the same panel: its context is cancelled and its result may no longer be
// applied.
type Sequencer struct {
	mu     sync.Mutex
	last   uint64
	panels map[string]ticket
}

// NewSequencer creates an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{panels: map[string]ticket{}}
}

// Begin starts a request for panel and returns its context and token.
func (s *Sequencer) Begin(ctx context.Context, panel string) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.last++
	token := s.last
	prev, ok := s.panels[panel]
	s.panels[panel] = ticket{token: token, cancel: cancel}
	s.mu.Unlock()

	if ok {
		prev.cancel()
	}
	return ctx, token
}

// Current reports whether token is still the latest request for panel.
func (s *Sequencer) Current(panel string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.panels[panel]
	return ok && t.token == token
}

// End releases the request's context. The panel entry stays so later Current calls
// keep answering for it.
func (s *Sequencer) End(panel string, token uint64) {
	s.mu.Lock()
	t, ok := s.panels[panel]
	s.mu.Unlock()
	if ok && t.token == token {
		t.cancel()
	}
}

// CancelAll cancels every in-flight request.
func (s *Sequencer) CancelAll() {
	s.mu.Lock()
	tickets := make([]ticket, 0, len(s.panels))
	for _, t := range s.panels {
		tickets = append(tickets, t)
	}
	s.mu.Unlock()

	for _, t := range tickets {
		t.cancel()
	}
}
