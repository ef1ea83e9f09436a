package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bitfsorg/libstake-go/ledger"
)

// MemStore is an in-memory implementation of Store for testing.
// Update works on a copy of the state that replaces the live one only on success.
type MemStore struct {
	mu    sync.RWMutex
	state *memState
}

type memState struct {
	config      *ledger.Config
	collections map[string]ledger.Collection
	stakings    map[uint64]ledger.Staking
	byOwner     map[string][]uint64
	nextID      uint64
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates a new empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		state: &memState{
			collections: make(map[string]ledger.Collection),
			stakings:    make(map[uint64]ledger.Staking),
			byOwner:     make(map[string][]uint64),
		},
	}
}

func (s *memState) clone() *memState {
	out := &memState{
		collections: make(map[string]ledger.Collection, len(s.collections)),
		stakings:    make(map[uint64]ledger.Staking, len(s.stakings)),
		byOwner:     make(map[string][]uint64, len(s.byOwner)),
		nextID:      s.nextID,
	}
	if s.config != nil {
		cfg := *s.config
		out.config = &cfg
	}
	for k, v := range s.collections {
		out.collections[k] = v
	}
	for k, v := range s.stakings {
		out.stakings[k] = v
	}
	for k, ids := range s.byOwner {
		out.byOwner[k] = append([]uint64(nil), ids...)
	}
	return out
}

// View runs fn against the current state.
func (m *MemStore) View(fn func(tx Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memTx{state: m.state})
}

// Update runs fn against a copy of the state and installs the copy if fn succeeds.
func (m *MemStore) Update(fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	if err := fn(&memTx{state: work, writable: true}); err != nil {
		return err
	}
	m.state = work
	return nil
}

// Close is a no-op.
func (m *MemStore) Close() error { return nil }

// memTx implements Tx over a memState.
type memTx struct {
	state    *memState
	writable bool
}

func (t *memTx) checkWritable() error {
	if !t.writable {
		return ErrReadOnly
	}
	return nil
}

func (t *memTx) Config() (*ledger.Config, error) {
	if t.state.config == nil {
		return nil, ErrConfigNotFound
	}
	cfg := *t.state.config
	return &cfg, nil
}

func (t *memTx) PutConfig(cfg *ledger.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	c := *cfg
	t.state.config = &c
	return nil
}

func (t *memTx) Collection(address string) (*ledger.Collection, error) {
	c, ok := t.state.collections[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, address)
	}
	return &c, nil
}

func (t *memTx) PutCollection(c *ledger.Collection) error {
	if c == nil {
		return fmt.Errorf("%w: collection", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	t.state.collections[c.Address] = *c
	return nil
}

func (t *memTx) Collections() ([]*ledger.Collection, error) {
	keys := make([]string, 0, len(t.state.collections))
	for k := range t.state.collections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*ledger.Collection, len(keys))
	for i, k := range keys {
		c := t.state.collections[k]
		out[i] = &c
	}
	return out, nil
}

func (t *memTx) Staking(id uint64) (*ledger.Staking, error) {
	s, ok := t.state.stakings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrStakingNotFound, id)
	}
	return &s, nil
}

func (t *memTx) PutStaking(s *ledger.Staking) error {
	if s == nil {
		return fmt.Errorf("%w: staking", ErrNilParam)
	}
	if err := t.checkWritable(); err != nil {
		return err
	}
	prev, exists := t.state.stakings[s.ID]
	if exists && prev.Owner != s.Owner {
		return fmt.Errorf("%w: record %d", ErrOwnerChanged, s.ID)
	}
	t.state.stakings[s.ID] = *s
	if !exists {
		t.state.byOwner[s.Owner] = append(t.state.byOwner[s.Owner], s.ID)
	}
	return nil
}

func (t *memTx) StakingsByOwner(owner string) ([]*ledger.Staking, error) {
	ids := t.state.byOwner[owner]
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make([]*ledger.Staking, 0, len(sorted))
	for _, id := range sorted {
		s := t.state.stakings[id]
		out = append(out, &s)
	}
	return out, nil
}

func (t *memTx) NextStakingID() (uint64, error) {
	if err := t.checkWritable(); err != nil {
		return 0, err
	}
	id := t.state.nextID
	t.state.nextID++
	return id, nil
}
