package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/config"
	"github.com/mezonai/starledger/ownership"
	"github.com/mezonai/starledger/sigverify"
	"github.com/mezonai/starledger/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const now = 1629664849

var acceptAll = sigverify.VerifierFunc(func(string, string, string) bool { return true })

type countingObserver struct {
	mu    sync.Mutex
	count int
}

func (c *countingObserver) OnBlockAppended(block.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func newLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	opts = append([]Option{WithClock(utils.FixedClock(now))}, opts...)
	l, err := NewLedger(nil, acceptAll, opts...)
	require.NoError(t, err)
	return l
}

func submit(t *testing.T, l *Ledger, address, story string) *block.Block {
	t.Helper()
	message := l.RequestMessageOwnershipVerification(address)
	sealed, err := l.SubmitStar(address, message, "sig", block.Star{Story: story})
	require.NoError(t, err)
	return sealed
}

func TestFreshLedgerHasOnlyGenesis(t *testing.T) {
	l := newLedger(t)

	assert.Equal(t, int64(0), l.GetChainHeight())
	genesis, ok := l.GetBlockByHeight(0)
	require.True(t, ok)
	tip, ok := l.GetLastBlock()
	require.True(t, ok)
	assert.Equal(t, *genesis, *tip)
	assert.Empty(t, genesis.PreviousBlockHash)
	assert.Equal(t, int64(now), genesis.Time)

	var payload block.GenesisPayload
	require.NoError(t, genesis.DecodeBody(&payload))
	assert.Equal(t, block.GenesisData, payload.Data)

	_, ok = l.GetBlockByHeight(1)
	assert.False(t, ok)
	assert.True(t, l.ValidateChain(context.Background()).Valid())
}

func TestInitializeChainIsIdempotent(t *testing.T) {
	obs := &countingObserver{}
	l := newLedger(t, WithObserver(obs))

	for i := 0; i < 3; i++ {
		require.NoError(t, l.InitializeChain())
	}
	assert.Equal(t, int64(0), l.GetChainHeight())
	assert.Equal(t, 1, obs.count)
}

func TestNewLedgerValidatesInput(t *testing.T) {
	_, err := NewLedger(&config.LedgerConfig{HashFunction: "md5", DomainTag: "x", ChallengeWindowSeconds: 1}, acceptAll)
	assert.Error(t, err)

	_, err = NewLedger(nil, nil)
	assert.Error(t, err)
}

func TestConfiguredHashFunctionAndDomainTag(t *testing.T) {
	cfg := config.DefaultLedgerConfig()
	cfg.HashFunction = block.HashBlake2b256
	cfg.DomainTag = "testRegistry"
	l, err := NewLedger(cfg, acceptAll, WithClock(utils.FixedClock(now)))
	require.NoError(t, err)

	assert.Equal(t, block.HashBlake2b256, l.HashFunction())
	assert.Equal(t, fmt.Sprintf("addr:%d:testRegistry", now), l.RequestMessageOwnershipVerification("addr"))
	submit(t, l, "addr", "s")
	assert.True(t, l.ValidateChain(context.Background()).Valid())
}

func TestSubmitStarLinksToPreviousBlock(t *testing.T) {
	l := newLedger(t)

	first := submit(t, l, "a", "one")
	second := submit(t, l, "b", "two")

	genesis, _ := l.GetBlockByHeight(0)
	assert.Equal(t, int64(1), first.Height)
	assert.Equal(t, genesis.Hash, first.PreviousBlockHash)
	assert.Equal(t, int64(2), second.Height)
	assert.Equal(t, first.Hash, second.PreviousBlockHash)
	assert.Equal(t, int64(2), l.GetChainHeight())

	byHash, ok := l.GetBlockByHash(second.Hash)
	require.True(t, ok)
	assert.Equal(t, *second, *byHash)
}

func TestSubmitStarRejectionLeavesChainUntouched(t *testing.T) {
	l := newLedger(t)

	_, err := l.SubmitStar("a", fmt.Sprintf("a:%d:starRegistry", now-301), "sig", block.Star{})
	assert.ErrorIs(t, err, ownership.ErrExpiredChallenge)
	assert.Equal(t, int64(0), l.GetChainHeight())
}

func TestGetStarsByWalletAddress(t *testing.T) {
	l := newLedger(t)
	submit(t, l, "a", "first")
	submit(t, l, "b", "other")
	submit(t, l, "a", "second")

	stars := l.GetStarsByWalletAddress("a")
	require.Len(t, stars, 2)
	assert.Equal(t, "first", stars[0].Star.Story)
	assert.Equal(t, "second", stars[1].Star.Story)
	for _, s := range stars {
		assert.Equal(t, "a", s.Owner)
	}

	none := l.GetStarsByWalletAddress("nobody")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestConcurrentSubmissions(t *testing.T) {
	l := newLedger(t)
	start := l.GetChainHeight()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			address := fmt.Sprintf("addr-%d", i)
			_, err := l.SubmitStar(address, l.RequestMessageOwnershipVerification(address), "sig", block.Star{})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, start+n, l.GetChainHeight())
	for h := start + 1; h <= start+n; h++ {
		_, ok := l.GetBlockByHeight(h)
		assert.True(t, ok, "missing height %d", h)
	}
	report := l.ValidateChain(context.Background())
	assert.True(t, report.Valid())
	assert.Equal(t, n+1, report.Checked)
}

func TestQueriesDoNotMutate(t *testing.T) {
	l := newLedger(t)
	b := submit(t, l, "a", "x")
	height := l.GetChainHeight()

	for i := 0; i < 20; i++ {
		l.GetBlockByHeight(int64(i))
		l.GetBlockByHash(b.Hash)
		l.GetStarsByWalletAddress("a")
		l.ValidateChain(context.Background())
	}

	assert.Equal(t, height, l.GetChainHeight())
	again, ok := l.GetBlockByHeight(b.Height)
	require.True(t, ok)
	assert.Equal(t, *b, *again)
}
