// Package providertest provides a scripted wallet for tests.
package providertest

import (
	"context"
	"sync"

	"github.com/ziadkadry99/proofchain/internal/provider"
)

// Fake is a scripted provider.Provider. Errors queued with Fail are returned
// by the next calls to that method in order; afterwards calls succeed.
type Fake struct {
	mu       sync.Mutex
	accounts []string
	chainID  string
	failures map[string][]error
	calls    []string

	accountSubs []*fakeSub[[]string]
	chainSubs   []*fakeSub[string]
}

// New returns a fake wallet holding the given accounts on chainID.
func New(chainID string, accounts ...string) *Fake {
	return &Fake{
		accounts: accounts,
		chainID:  chainID,
		failures: make(map[string][]error),
	}
}

// Fail queues err for the next call of method (for example "eth_requestAccounts").
func (f *Fake) Fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = append(f.failures[method], err)
}

// Calls returns the method names called so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times method was called.
func (f *Fake) CallCount(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

func (f *Fake) SetChain(chainID string) {
	f.mu.Lock()
	f.chainID = chainID
	f.mu.Unlock()
}

func (f *Fake) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	if q := f.failures[method]; len(q) > 0 {
		f.failures[method] = q[1:]
		return q[0]
	}
	return nil
}

func (f *Fake) Accounts(ctx context.Context) ([]string, error) {
	if err := f.record("eth_accounts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.accounts...), nil
}

func (f *Fake) RequestAccounts(ctx context.Context) ([]string, error) {
	if err := f.record("eth_requestAccounts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.accounts...), nil
}

func (f *Fake) ChainID(ctx context.Context) (string, error) {
	if err := f.record("eth_chainId"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chainID, nil
}

func (f *Fake) SwitchChain(ctx context.Context, chainID string) error {
	if err := f.record("wallet_switchEthereumChain"); err != nil {
		return err
	}
	f.SetChain(chainID)
	return nil
}

func (f *Fake) AddChain(ctx context.Context, params provider.AddChainParams) error {
	return f.record("wallet_addEthereumChain")
}

func (f *Fake) SubscribeAccounts(ctx context.Context, ch chan<- []string) (provider.Subscription, error) {
	if err := f.record("subscribe_accountsChanged"); err != nil {
		return nil, err
	}
	sub := newFakeSub(ch)
	f.mu.Lock()
	f.accountSubs = append(f.accountSubs, sub)
	f.mu.Unlock()
	return sub, nil
}

func (f *Fake) SubscribeChain(ctx context.Context, ch chan<- string) (provider.Subscription, error) {
	if err := f.record("subscribe_chainChanged"); err != nil {
		return nil, err
	}
	sub := newFakeSub(ch)
	f.mu.Lock()
	f.chainSubs = append(f.chainSubs, sub)
	f.mu.Unlock()
	return sub, nil
}

// EmitAccounts delivers an accountsChanged notification to every live
// subscriber and returns how many received it.
func (f *Fake) EmitAccounts(accounts []string) int {
	f.mu.Lock()
	f.accounts = accounts
	subs := append([]*fakeSub[[]string](nil), f.accountSubs...)
	f.mu.Unlock()
	n := 0
	for _, s := range subs {
		if s.send(accounts) {
			n++
		}
	}
	return n
}

// EmitChain delivers a chainChanged notification.
func (f *Fake) EmitChain(chainID string) int {
	f.SetChain(chainID)
	f.mu.Lock()
	subs := append([]*fakeSub[string](nil), f.chainSubs...)
	f.mu.Unlock()
	n := 0
	for _, s := range subs {
		if s.send(chainID) {
			n++
		}
	}
	return n
}

// DropAccounts ends every live account subscription with err, as a wallet
// does when its connection is lost. It blocks until each subscriber has
// received the error.
func (f *Fake) DropAccounts(err error) {
	f.mu.Lock()
	subs := append([]*fakeSub[[]string](nil), f.accountSubs...)
	f.mu.Unlock()
	for _, s := range subs {
		if !s.closed() {
			s.err <- err
		}
	}
}

// Active returns the number of subscriptions not yet released.
func (f *Fake) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.accountSubs {
		if !s.closed() {
			n++
		}
	}
	for _, s := range f.chainSubs {
		if !s.closed() {
			n++
		}
	}
	return n
}

type fakeSub[T any] struct {
	mu   sync.Mutex
	ch   chan<- T
	err  chan error
	done bool
}

func newFakeSub[T any](ch chan<- T) *fakeSub[T] {
	return &fakeSub[T]{ch: ch, err: make(chan error)}
}

func (s *fakeSub[T]) send(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.ch <- v
	return true
}

func (s *fakeSub[T]) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.done = true
		close(s.err)
	}
}

func (s *fakeSub[T]) Err() <-chan error { return s.err }

func (s *fakeSub[T]) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}
