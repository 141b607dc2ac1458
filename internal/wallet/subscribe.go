package wallet

import (
	"context"
	"errors"
	"fmt"
)

// ErrSubscriptionClosed is reported by Err when the wallet closed a change
// subscription without giving a reason.
var ErrSubscriptionClosed = errors.New("wallet closed the subscription")

// Start subscribes to the wallet's account and chain notifications. It may
// be called once per session; the subscriptions are released by Close or by
// cancelling ctx.
func (s *Session) Start(ctx context.Context) error {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	if s.provider == nil {
		s.log.Debug("no wallet detected, skipping change notifications")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	accountsCh := make(chan []string, 4)
	chainCh := make(chan string, 4)

	accSub, err := s.provider.SubscribeAccounts(ctx, accountsCh)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to account changes: %w", err)
	}
	chainSub, err := s.provider.SubscribeChain(ctx, chainCh)
	if err != nil {
		accSub.Unsubscribe()
		cancel()
		return fmt.Errorf("subscribe to chain changes: %w", err)
	}

	s.started = true
	s.cancel = cancel
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		defer accSub.Unsubscribe()
		defer chainSub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case accounts := <-accountsCh:
				s.accountsChanged(accounts)
			case hex := <-chainCh:
				s.chainChanged(hex)
			case err, ok := <-accSub.Err():
				s.endLoop("account", err, ok)
				return
			case err, ok := <-chainSub.Err():
				s.endLoop("chain", err, ok)
				return
			}
		}
	}(s.done)

	return nil
}

func (s *Session) endLoop(kind string, err error, ok bool) {
	if !ok || err == nil {
		err = ErrSubscriptionClosed
	}
	s.log.Errorf("%s subscription ended: %v", kind, err)
	s.subMu.Lock()
	s.loopErr = fmt.Errorf("%s notifications: %w", kind, err)
	s.subMu.Unlock()
}

// Done is closed when the notification loop exits, whether through Close,
// cancellation or the wallet dropping a subscription. It is nil before a
// successful Start, so receiving from it blocks.
func (s *Session) Done() <-chan struct{} {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.done
}

// Err reports why the notification loop stopped. It is nil while the loop
// runs and after a Close or cancellation.
func (s *Session) Err() error {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.loopErr
}

// Close releases the change subscriptions and waits for the notification
// loop to exit. It is safe to call more than once.
func (s *Session) Close() error {
	s.subMu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.subMu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
