package pipeline

import (
	"context"
	"fmt"
)

// Start runs cycles in the background whenever Trigger is called.
func (s *Syncer) Start(ctx context.Context) error {
	s.state.Lock()
	defer s.state.Unlock()

	if s.closed {
		return fmt.Errorf("syncer is stopped")
	}
	if s.started {
		return fmt.Errorf("syncer already started")
	}
	s.started = true

	s.wg.Add(1)
	go s.worker(ctx)
	return nil
}

// Trigger requests a cycle without waiting for it. Triggers that arrive while
// one is already pending collapse into it. Returns false once stopped.
func (s *Syncer) Trigger() bool {
	s.state.Lock()
	defer s.state.Unlock()
	if s.closed {
		return false
	}

	select {
	case s.trigger <- struct{}{}:
	default:
	}
	return true
}

// Stop waits for the running cycle, if any, and ends the worker.
func (s *Syncer) Stop() {
	s.state.Lock()
	if s.closed {
		s.state.Unlock()
		return
	}
	s.closed = true
	close(s.closeChan)
	s.state.Unlock()

	s.wg.Wait()
}

func (s *Syncer) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closeChan:
			return
		case <-s.trigger:
			if _, err := s.Sync(ctx); err != nil {
				s.log.Error().Err(err).Msg("background sync failed")
			}
		}
	}
}
