package sessions

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Start runs the renewal loop until ctx ends or Close is called. Calling Start on a
// running store does nothing.
func (s *Store) Start(ctx context.Context) {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()
	if s.cancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.renewalLoop(loopCtx, s.done)
}

// Close stops the renewal loop and waits for it to exit
func (s *Store) Close() {
	s.loopMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.loopMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// renewalLoop refreshes the session every renewal period while signed in. Installing new
// tokens restarts the period.
func (s *Store) renewalLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(s.renewalPeriod())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.rearm:
			timer.Reset(s.renewalPeriod())
		case <-timer.C:
			if s.IsAuthenticated() {
				if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
					log.Warn().Err(err).Msg("scheduled session renewal failed")
				}
			}
			timer.Reset(s.renewalPeriod())
		}
	}
}
