// Package wallet owns the connection between ProofChain and the user's
// wallet. A single Session is built at startup and handed to every consumer.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/proofchain/internal/chain"
	"github.com/ziadkadry99/proofchain/internal/logging"
	"github.com/ziadkadry99/proofchain/internal/provider"
)

var (
	ErrAlreadyStarted = errors.New("wallet session already started")
	ErrNoAccounts     = errors.New("wallet returned no accounts")
)

// State is a snapshot of the session.
type State struct {
	Address      string  `json:"address"`
	Connected    bool    `json:"is_connected"`
	ChainID      *uint64 `json:"chain_id"`
	ShortAddress string  `json:"short_address"`
	Network      string  `json:"network"`
	OnTarget     bool    `json:"on_target_network"`
}

// Session tracks the connected account and chain. All writes go through
// Connect, Disconnect, Init and the wallet's change notifications.
type Session struct {
	provider    provider.Provider
	log         *zap.SugaredLogger
	advise      func(Advisory)
	target      uint64
	callTimeout time.Duration

	mu      sync.RWMutex
	address string
	chainID *uint64
	last    *Advisory

	watchMu  sync.Mutex
	watchers map[int]chan State
	nextID   int

	subMu   sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	loopErr error
}

type Option func(*Session)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) { s.log = l }
}

// WithAdvisor receives every advisory raised by the session.
func WithAdvisor(fn func(Advisory)) Option {
	return func(s *Session) { s.advise = fn }
}

func WithTargetChain(id uint64) Option {
	return func(s *Session) { s.target = id }
}

// WithCallTimeout bounds each wallet request. Zero means no bound.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Session) { s.callTimeout = d }
}

// New creates a disconnected session. A nil provider means no wallet is
// available; Connect then only raises an advisory.
func New(p provider.Provider, opts ...Option) *Session {
	s := &Session{
		provider: p,
		log:      logging.Sugared("wallet"),
		target:   chain.SepoliaChainID,
		watchers: make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the wallet capability, or nil when none is present.
func (s *Session) Provider() provider.Provider { return s.provider }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// snapshot must be called with mu held.
func (s *Session) snapshot() State {
	st := State{
		Address:      s.address,
		Connected:    s.address != "",
		ShortAddress: chain.FormatAddress(s.address),
		Network:      chain.NameOf(s.chainID),
	}
	if s.chainID != nil {
		id := *s.chainID
		st.ChainID = &id
		st.OnTarget = id == s.target
	}
	return st
}

// Address returns the connected account, or "".
func (s *Session) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

func (s *Session) IsConnected() bool {
	return s.Address() != ""
}

// LastAdvisory returns the most recent advisory, if any.
func (s *Session) LastAdvisory() *Advisory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	a := *s.last
	return &a
}

func (s *Session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout > 0 {
		return context.WithTimeout(ctx, s.callTimeout)
	}
	return context.WithCancel(ctx)
}

// Connect asks the wallet for account access. On success the first account
// becomes the session address and the chain id is read separately; a chain
// other than the target raises a wrong-network advisory but the connection
// stands. On failure the state is left as it was.
func (s *Session) Connect(ctx context.Context) error {
	if s.provider == nil {
		s.log.Warn("connect: no wallet detected")
		s.raise(AdvisoryNoWallet)
		return provider.ErrNoWallet
	}

	cctx, cancel := s.callContext(ctx)
	defer cancel()

	accounts, err := s.provider.RequestAccounts(cctx)
	if err != nil {
		if provider.IsUserRejected(err) {
			s.log.Infof("connect: user rejected account request")
		} else {
			s.log.Errorf("connect: %v", err)
		}
		return fmt.Errorf("request accounts: %w", err)
	}
	if len(accounts) == 0 {
		s.log.Warn("connect: wallet returned no accounts")
		return ErrNoAccounts
	}

	s.setAddress(accounts[0])
	s.log.Infof("connected %s", chain.FormatAddress(accounts[0]))

	id, ok := s.readChain(cctx)
	if ok && id != s.target {
		s.raise(AdvisoryWrongNetwork)
	}
	return nil
}

// Disconnect forgets the account locally. The wallet keeps its own
// authorization; only the user can revoke that from the wallet itself.
func (s *Session) Disconnect() {
	s.update(func() {
		s.address = ""
		s.chainID = nil
	})
	s.log.Infof("disconnected")
}

// Init restores an already-authorized account without prompting the user.
// Failures are logged and leave the session empty.
func (s *Session) Init(ctx context.Context) {
	if s.provider == nil {
		s.log.Debug("init: no wallet detected")
		return
	}
	cctx, cancel := s.callContext(ctx)
	defer cancel()

	accounts, err := s.provider.Accounts(cctx)
	if err != nil {
		s.log.Errorf("init: checking wallet connection: %v", err)
		return
	}
	if len(accounts) == 0 {
		return
	}
	s.setAddress(accounts[0])
	s.readChain(cctx)
}

// readChain queries and stores the active chain id.
func (s *Session) readChain(ctx context.Context) (uint64, bool) {
	hex, err := s.provider.ChainID(ctx)
	if err != nil {
		s.log.Errorf("reading chain id: %v", err)
		return 0, false
	}
	id, err := chain.ParseChainID(hex)
	if err != nil {
		s.log.Errorf("parsing chain id %q: %v", hex, err)
		return 0, false
	}
	s.setChain(id)
	return id, true
}

// update applies one transition and publishes the resulting state while
// still holding mu, so watchers see transitions in the order they happened.
func (s *Session) update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.broadcast(s.snapshot())
}

func (s *Session) setAddress(addr string) {
	s.update(func() { s.address = addr })
}

func (s *Session) setChain(id uint64) {
	s.update(func() { s.chainID = &id })
}

func (s *Session) accountsChanged(accounts []string) {
	if len(accounts) == 0 {
		s.update(func() { s.address = "" })
		s.log.Infof("wallet disconnected all accounts")
		return
	}
	s.log.Infof("account changed to %s", chain.FormatAddress(accounts[0]))
	s.setAddress(accounts[0])
}

func (s *Session) chainChanged(hex string) {
	id, err := chain.ParseChainID(hex)
	if err != nil {
		s.log.Warnf("ignoring chain change %q: %v", hex, err)
		return
	}
	s.log.Infof("network changed to %s", chain.Name(id))
	s.setChain(id)
}

func (s *Session) raise(kind AdvisoryKind) {
	a := Advisory{Kind: kind, Message: kind.Message(), At: time.Now()}
	s.mu.Lock()
	s.last = &a
	s.mu.Unlock()
	s.log.Warn(a.Message)
	if s.advise != nil {
		s.advise(a)
	}
}

// Watch returns a channel that receives the session state after every
// transition. Only the latest state is buffered. Call the returned func to
// stop watching.
func (s *Session) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)
	s.watchMu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = ch
	s.watchMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.watchMu.Lock()
			delete(s.watchers, id)
			s.watchMu.Unlock()
		})
	}
}

// broadcast never blocks. Callers hold mu.
func (s *Session) broadcast(st State) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		// Drop a stale undelivered state so the newest one wins.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
