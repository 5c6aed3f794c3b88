package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/config"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/mem_blockstore"
	"github.com/mezonai/starledger/ownership"
	"github.com/mezonai/starledger/sigverify"
	"github.com/mezonai/starledger/utils"
	"github.com/mezonai/starledger/validator"
)

type options struct {
	clock     utils.Clock
	observers []mem_blockstore.AppendObserver
}

type Option func(*options)

// WithClock pins the clock used for block timestamps and challenge checks.
func WithClock(clock utils.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithObserver registers an observer for every appended block, genesis included.
func WithObserver(observer mem_blockstore.AppendObserver) Option {
	return func(o *options) {
		o.observers = append(o.observers, observer)
	}
}

// Ledger is the star registry: one in-memory chain, the verifier that admits
// ownership claims into it and the validator that audits it.
type Ledger struct {
	cfg       config.LedgerConfig
	factory   *block.Factory
	store     *mem_blockstore.MemBlockStore
	validator *validator.ChainValidator
	ownership *ownership.Verifier
}

func NewLedger(cfg *config.LedgerConfig, sv sigverify.SignatureVerifier, opts ...Option) (*Ledger, error) {
	if cfg == nil {
		cfg = config.DefaultLedgerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ledger config: %w", err)
	}
	if sv == nil {
		return nil, fmt.Errorf("signature verifier is required")
	}
	o := options{clock: utils.SystemClock}
	for _, opt := range opts {
		opt(&o)
	}

	hasher, err := block.NewHasher(cfg.HashFunction)
	if err != nil {
		return nil, err
	}
	factory := block.NewFactory(hasher)

	storeOpts := []mem_blockstore.Option{mem_blockstore.WithClock(o.clock)}
	for _, observer := range o.observers {
		storeOpts = append(storeOpts, mem_blockstore.WithObserver(observer))
	}
	store := mem_blockstore.NewMemBlockStore(factory, storeOpts...)

	l := &Ledger{
		cfg:       *cfg,
		factory:   factory,
		store:     store,
		validator: validator.NewChainValidator(factory, store, validator.WithWorkers(cfg.ValidatorWorkers)),
		ownership: ownership.NewVerifier(store, factory, sv,
			ownership.WithDomainTag(cfg.DomainTag),
			ownership.WithWindow(cfg.ChallengeWindow()),
			ownership.WithClock(o.clock),
		),
	}
	if err := l.InitializeChain(); err != nil {
		return nil, err
	}
	return l, nil
}

// InitializeChain creates the genesis block on an empty chain and is a no-op otherwise.
func (l *Ledger) InitializeChain() error {
	genesis, created, err := l.store.InitGenesis()
	if err != nil {
		return logx.Errorf("initialize chain: %w", err)
	}
	if created {
		logx.Info("LEDGER", fmt.Sprintf("Genesis block created | hash=%s | time=%d | hash_function=%s", genesis.Hash, genesis.Time, l.factory.Hasher().Name()))
	}
	return nil
}

func (l *Ledger) GetChainHeight() int64 {
	return l.store.CurrentHeight()
}

// GetLastBlock returns a copy of the tip, or false while the chain is empty.
func (l *Ledger) GetLastBlock() (*block.Block, bool) {
	tip, err := l.store.LastBlock()
	if err != nil {
		return nil, false
	}
	return tip, true
}

// RequestMessageOwnershipVerification returns the challenge address has to sign.
func (l *Ledger) RequestMessageOwnershipVerification(address string) string {
	return l.ownership.RequestChallenge(address)
}

// SubmitStar registers star for address once the signed challenge checks out. The
// returned block has already been committed.
func (l *Ledger) SubmitStar(address, message, signature string, star block.Star) (*block.Block, error) {
	return l.ownership.Submit(address, message, signature, star)
}

func (l *Ledger) GetBlockByHash(hash string) (*block.Block, bool) {
	return l.store.GetBlockByHash(hash)
}

func (l *Ledger) GetBlockByHeight(height int64) (*block.Block, bool) {
	return l.store.GetBlockByHeight(height)
}

// GetStarsByWalletAddress returns the stars registered by address in chain order.
// The genesis block and bodies that cannot be decoded are skipped.
func (l *Ledger) GetStarsByWalletAddress(address string) []block.StarRecord {
	stars := make([]block.StarRecord, 0)
	for _, b := range l.store.Snapshot() {
		record, ok := b.StarRecord()
		if !ok {
			continue
		}
		if record.Owner == address {
			stars = append(stars, record)
		}
	}
	return stars
}

// ValidateChain audits a snapshot of the chain. Findings are data, never errors.
func (l *Ledger) ValidateChain(ctx context.Context) validator.Report {
	return l.validator.Validate(ctx)
}

func (l *Ledger) Config() config.LedgerConfig {
	return l.cfg
}

func (l *Ledger) ChallengeWindow() time.Duration {
	return l.ownership.Window()
}

func (l *Ledger) HashFunction() string {
	return l.factory.Hasher().Name()
}
