// Package hashes is the proof browser: it keeps a periodically refreshed
// copy of every registered proof and serves filtered, sorted views of it.
package hashes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ziadkadry99/proofchain/internal/logging"
	"github.com/ziadkadry99/proofchain/internal/proofapi"
	"github.com/ziadkadry99/proofchain/internal/proofs"
	"github.com/ziadkadry99/proofchain/internal/wallet"
)

var log = logging.Logger("hashes")

// DefaultInterval is how often the proof list is refreshed.
const DefaultInterval = 30 * time.Second

// Lister fetches proofs from the backend.
type Lister interface {
	ListProofs(ctx context.Context) (*proofapi.ProofList, error)
	GetProof(ctx context.Context, id string) (*proofapi.ProofRecord, error)
}

// Session is the wallet state the view follows.
type Session interface {
	Address() string
	Watch() (<-chan wallet.State, func())
}

// View owns one fetched proof collection. Each refresh replaces the whole
// collection.
type View struct {
	api      Lister
	session  Session
	interval time.Duration

	mu        sync.RWMutex
	records   []proofs.Record
	loaded    bool
	lastErr   error
	fetchedAt time.Time

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(api Lister, session Session, interval time.Duration) *View {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &View{api: api, session: session, interval: interval}
}

// Refresh fetches the full proof list and swaps it in.
func (v *View) Refresh(ctx context.Context) error {
	list, err := v.api.ListProofs(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.lastErr = err
		log.Errorf("fetching proofs: %v", err)
		return fmt.Errorf("fetch proofs: %w", err)
	}
	records := list.Proofs
	if records == nil {
		records = []proofs.Record{}
	}
	v.records = records
	v.loaded = true
	v.lastErr = nil
	v.fetchedAt = time.Now()
	return nil
}

// Run refreshes immediately, then on every tick and whenever the wallet
// address changes, until ctx is cancelled or Close is called.
func (v *View) Run(ctx context.Context) {
	v.runMu.Lock()
	if v.cancel != nil {
		v.runMu.Unlock()
		log.Warn("proof view already running")
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	v.cancel, v.done = cancel, done
	v.runMu.Unlock()

	defer func() {
		close(done)
		v.runMu.Lock()
		v.cancel, v.done = nil, nil
		v.runMu.Unlock()
	}()

	states, stop := v.session.Watch()
	defer stop()

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	address := v.session.Address()
	v.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.Refresh(ctx)
		case st := <-states:
			if st.Address == address {
				continue
			}
			address = st.Address
			log.Debugf("wallet changed, refreshing proofs")
			v.Refresh(ctx)
		}
	}
}

// Close stops a running refresh loop and waits for it to exit.
func (v *View) Close() error {
	v.runMu.Lock()
	cancel, done := v.cancel, v.done
	v.runMu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Result is a derived view of the collection.
type Result struct {
	Proofs    []proofs.Record `json:"proofs"`
	Stats     proofs.Stats    `json:"stats"`
	Loaded    bool            `json:"loaded"`
	FetchedAt time.Time       `json:"fetched_at,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Query filters and sorts the current collection. Mode "my" uses the
// session address.
func (v *View) Query(q proofs.Query) Result {
	if q.Address == "" {
		q.Address = v.session.Address()
	}

	v.mu.RLock()
	records, loaded, lastErr, fetchedAt := v.records, v.loaded, v.lastErr, v.fetchedAt
	v.mu.RUnlock()

	res := Result{
		Proofs:    proofs.Apply(records, q),
		Stats:     proofs.Summarize(records, q.Address),
		Loaded:    loaded,
		FetchedAt: fetchedAt,
	}
	if lastErr != nil {
		res.Error = "Failed to load proofs"
	}
	return res
}

// Get looks a proof up on the backend.
func (v *View) Get(ctx context.Context, id string) (*proofs.Record, error) {
	p, err := v.api.GetProof(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get proof %s: %w", id, err)
	}
	return p, nil
}
