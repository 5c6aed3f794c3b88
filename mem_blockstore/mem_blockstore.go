package mem_blockstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/exception"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/monitoring"
	"github.com/mezonai/starledger/utils"
)

var ErrEmptyChain = errors.New("mem_blockstore: chain is empty")

// AppendObserver is notified with every committed block, in chain order.
type AppendObserver interface {
	OnBlockAppended(b block.Block)
}

type Option func(*MemBlockStore)

func WithClock(clock utils.Clock) Option {
	return func(mbs *MemBlockStore) {
		mbs.clock = clock
	}
}

func WithObserver(o AppendObserver) Option {
	return func(mbs *MemBlockStore) {
		mbs.observers = append(mbs.observers, o)
	}
}

// MemBlockStore keeps the chain in process memory. Appends are serialized by mu
// end to end; readers share the read lock and only ever see fully sealed blocks.
type MemBlockStore struct {
	mu        sync.RWMutex
	chain     []block.Block
	height    int64
	hashIndex map[string]int64

	// pending holds committed blocks not yet handed to observers, in chain order.
	// Blocks are queued under mu; delivery happens with no lock held.
	notifyMu   sync.Mutex
	pending    []block.Block
	delivering bool
	observers  []AppendObserver

	factory *block.Factory
	clock   utils.Clock
}

func NewMemBlockStore(factory *block.Factory, opts ...Option) *MemBlockStore {
	mbs := &MemBlockStore{
		chain:     make([]block.Block, 0, 64),
		height:    -1,
		hashIndex: make(map[string]int64),
		factory:   factory,
		clock:     utils.SystemClock,
	}
	for _, opt := range opts {
		opt(mbs)
	}
	return mbs
}

// CurrentHeight returns the height of the last block, or -1 for an empty store.
func (mbs *MemBlockStore) CurrentHeight() int64 {
	mbs.mu.RLock()
	defer mbs.mu.RUnlock()
	return mbs.height
}

// Append seals b on top of the current tip and stores it. The returned block is a
// copy of what was committed. Observers run after the write lock is released; when
// another goroutine is already delivering, it delivers this block too and Append
// returns without waiting for it.
func (mbs *MemBlockStore) Append(b *block.Block) (*block.Block, error) {
	sealed, _, err := mbs.append(b, false)
	return sealed, err
}

// InitGenesis appends the genesis block if, and only if, the store is empty.
// created is false when a chain already exists.
func (mbs *MemBlockStore) InitGenesis() (genesis *block.Block, created bool, err error) {
	unsealed, err := mbs.factory.Create(block.NewGenesisPayload())
	if err != nil {
		return nil, false, logx.Errorf("create genesis block: %w", err)
	}
	return mbs.append(unsealed, true)
}

func (mbs *MemBlockStore) append(b *block.Block, onlyIfEmpty bool) (*block.Block, bool, error) {
	if b == nil {
		return nil, false, block.ErrNilBlock
	}
	start := time.Now()

	mbs.mu.Lock()
	if onlyIfEmpty && mbs.height >= 0 {
		mbs.mu.Unlock()
		return nil, false, nil
	}

	nextHeight := mbs.height + 1
	previousHash := ""
	if len(mbs.chain) > 0 {
		previousHash = mbs.chain[len(mbs.chain)-1].Hash
	}

	sealed, err := mbs.factory.Seal(b, nextHeight, previousHash, utils.UnixSeconds(mbs.clock()))
	if err != nil {
		mbs.mu.Unlock()
		return nil, false, logx.Errorf("append block at height %d: %w", nextHeight, err)
	}

	mbs.chain = append(mbs.chain, *sealed)
	mbs.height = int64(len(mbs.chain) - 1)
	if _, exists := mbs.hashIndex[sealed.Hash]; !exists {
		mbs.hashIndex[sealed.Hash] = sealed.Height
	}
	committed := *sealed
	if len(mbs.observers) > 0 {
		mbs.notifyMu.Lock()
		mbs.pending = append(mbs.pending, committed)
		mbs.notifyMu.Unlock()
	}
	mbs.mu.Unlock()

	monitoring.RecordAppend(time.Since(start))
	monitoring.SetBlockHeight(committed.Height)
	logx.Debug("BLOCK", fmt.Sprintf("Appended block %d hash=%s prev=%s", committed.Height, utils.ShortenLog(committed.Hash), utils.ShortenLog(committed.PreviousBlockHash)))

	mbs.deliverPending()
	return &committed, true, nil
}

// deliverPending drains the queue unless another goroutine is already draining it.
// Only one goroutine delivers at a time, so observers see blocks in chain order, and
// an observer that appends only queues its block for the loop below.
func (mbs *MemBlockStore) deliverPending() {
	mbs.notifyMu.Lock()
	if mbs.delivering {
		mbs.notifyMu.Unlock()
		return
	}
	mbs.delivering = true
	for len(mbs.pending) > 0 {
		next := mbs.pending[0]
		mbs.pending = mbs.pending[1:]
		mbs.notifyMu.Unlock()

		mbs.notify(next)

		mbs.notifyMu.Lock()
	}
	mbs.delivering = false
	mbs.pending = nil
	mbs.notifyMu.Unlock()
}

func (mbs *MemBlockStore) notify(b block.Block) {
	for _, o := range mbs.observers {
		func() {
			defer exception.Recover("append observer")
			o.OnBlockAppended(b)
		}()
	}
}

// GetBlockByHeight returns a copy of the block at height h.
func (mbs *MemBlockStore) GetBlockByHeight(h int64) (*block.Block, bool) {
	mbs.mu.RLock()
	defer mbs.mu.RUnlock()

	if h < 0 || h >= int64(len(mbs.chain)) {
		return nil, false
	}
	b := mbs.chain[h]
	return &b, true
}

// GetBlockByHash returns a copy of the first block carrying hash.
func (mbs *MemBlockStore) GetBlockByHash(hash string) (*block.Block, bool) {
	if hash == "" {
		return nil, false
	}
	mbs.mu.RLock()
	defer mbs.mu.RUnlock()

	h, exists := mbs.hashIndex[hash]
	if !exists || h >= int64(len(mbs.chain)) {
		return nil, false
	}
	b := mbs.chain[h]
	return &b, true
}

// LastBlock returns a copy of the tip.
func (mbs *MemBlockStore) LastBlock() (*block.Block, error) {
	mbs.mu.RLock()
	defer mbs.mu.RUnlock()

	if len(mbs.chain) == 0 {
		return nil, ErrEmptyChain
	}
	b := mbs.chain[len(mbs.chain)-1]
	return &b, nil
}

// Snapshot copies the whole chain. The copy is consistent: it reflects the state
// either before or after any concurrent append.
func (mbs *MemBlockStore) Snapshot() []block.Block {
	mbs.mu.RLock()
	defer mbs.mu.RUnlock()

	out := make([]block.Block, len(mbs.chain))
	copy(out, mbs.chain)
	return out
}

// Factory returns the factory blocks are sealed with.
func (mbs *MemBlockStore) Factory() *block.Factory {
	return mbs.factory
}
