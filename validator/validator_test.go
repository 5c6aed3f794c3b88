package validator

import (
	"context"
	"fmt"
	"testing"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/mem_blockstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChain(t *testing.T, n int) (*mem_blockstore.MemBlockStore, *block.Factory) {
	t.Helper()
	f := block.NewFactory(nil)
	mbs := mem_blockstore.NewMemBlockStore(f)
	_, _, err := mbs.InitGenesis()
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		b, err := f.Create(block.StarRecord{Owner: fmt.Sprintf("owner-%d", i)})
		require.NoError(t, err)
		_, err = mbs.Append(b)
		require.NoError(t, err)
	}
	return mbs, f
}

func hasFinding(r Report, kind FindingKind, height int64) bool {
	for _, f := range r.Findings {
		if f.Kind == kind && f.Height == height {
			return true
		}
	}
	return false
}

func TestValidChain(t *testing.T) {
	mbs, f := buildChain(t, 5)
	cv := NewChainValidator(f, mbs, WithWorkers(2))

	report := cv.Validate(context.Background())
	assert.True(t, report.Valid())
	assert.Equal(t, 6, report.Checked)
	assert.Equal(t, int64(5), report.Height)
	assert.Empty(t, report.Findings)
	assert.Len(t, report.Messages(), 1)
}

func TestEmptyChainIsValid(t *testing.T) {
	cv := NewChainValidator(block.NewFactory(nil), mem_blockstore.NewMemBlockStore(block.NewFactory(nil)))

	report := cv.Validate(context.Background())
	assert.True(t, report.Valid())
	assert.Equal(t, int64(-1), report.Height)
	assert.Equal(t, 0, report.Checked)
}

func TestTamperedBodyIsReportedForThatBlockOnly(t *testing.T) {
	mbs, f := buildChain(t, 5)
	blocks := mbs.Snapshot()

	tamperedBody, err := f.Create(block.StarRecord{Owner: "attacker"})
	require.NoError(t, err)
	blocks[2].Body = tamperedBody.Body

	report := NewChainValidator(f, mbs).ValidateBlocks(context.Background(), blocks)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, TamperedBlock, report.Findings[0].Kind)
	assert.Equal(t, int64(2), report.Findings[0].Height)
	assert.False(t, hasFinding(report, BrokenLink, 3))
	assert.False(t, report.Valid())
}

func TestTamperedFieldsAreAllDetected(t *testing.T) {
	mbs, f := buildChain(t, 3)

	mutations := map[string]func(*block.Block){
		"height": func(b *block.Block) { b.Height = 42 },
		"time":   func(b *block.Block) { b.Time++ },
		"body":   func(b *block.Block) { b.Body = "00" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			blocks := mbs.Snapshot()
			mutate(&blocks[1])
			report := NewChainValidator(f, mbs).ValidateBlocks(context.Background(), blocks)
			require.Len(t, report.Findings, 1)
			assert.True(t, hasFinding(report, TamperedBlock, 1))
		})
	}
}

func TestCorruptedPreviousHashWithoutRehash(t *testing.T) {
	mbs, f := buildChain(t, 5)
	blocks := mbs.Snapshot()
	blocks[3].PreviousBlockHash = "deadbeef"

	report := NewChainValidator(f, mbs).ValidateBlocks(context.Background(), blocks)
	assert.True(t, hasFinding(report, BrokenLink, 3))
	// the previous hash is part of the digest, so the block no longer matches its own hash
	assert.True(t, hasFinding(report, TamperedBlock, 3))
	assert.Len(t, report.Findings, 2)
}

func TestForgedRelinkOfTipIsBrokenLinkOnly(t *testing.T) {
	mbs, f := buildChain(t, 5)
	blocks := mbs.Snapshot()
	tip := len(blocks) - 1

	blocks[tip].PreviousBlockHash = "deadbeef"
	rehashed, err := f.ComputeHash(blocks[tip])
	require.NoError(t, err)
	blocks[tip].Hash = rehashed

	report := NewChainValidator(f, mbs).ValidateBlocks(context.Background(), blocks)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, Finding{
		Kind:     BrokenLink,
		Height:   int64(tip),
		Expected: blocks[tip-1].Hash,
		Actual:   "deadbeef",
	}, report.Findings[0])
}

func TestForgedRelinkOfInnerBlockBreaksBothLinks(t *testing.T) {
	mbs, f := buildChain(t, 5)
	blocks := mbs.Snapshot()

	blocks[2].PreviousBlockHash = "deadbeef"
	rehashed, err := f.ComputeHash(blocks[2])
	require.NoError(t, err)
	blocks[2].Hash = rehashed

	report := NewChainValidator(f, mbs).ValidateBlocks(context.Background(), blocks)
	assert.True(t, hasFinding(report, BrokenLink, 2))
	assert.True(t, hasFinding(report, BrokenLink, 3))
	assert.False(t, hasFinding(report, TamperedBlock, 2))
	assert.Len(t, report.Findings, 2)
}

func TestReplacedHashBreaksNextLink(t *testing.T) {
	mbs, f := buildChain(t, 4)
	blocks := mbs.Snapshot()
	blocks[2].Hash = "tamperedhash"

	report := NewChainValidator(f, mbs).ValidateBlocks(context.Background(), blocks)
	assert.True(t, hasFinding(report, TamperedBlock, 2))
	assert.True(t, hasFinding(report, BrokenLink, 3))
	assert.Len(t, report.Findings, 2)
}

func TestGenesisWithPreviousHash(t *testing.T) {
	mbs, f := buildChain(t, 1)
	blocks := mbs.Snapshot()
	blocks[0].PreviousBlockHash = "0"

	report := NewChainValidator(f, mbs).ValidateBlocks(context.Background(), blocks)
	assert.True(t, hasFinding(report, BrokenLink, 0))
	assert.True(t, hasFinding(report, TamperedBlock, 0))
}

func TestEveryBlockIsChecked(t *testing.T) {
	mbs, f := buildChain(t, 10)
	blocks := mbs.Snapshot()
	for _, i := range []int{1, 4, 9} {
		blocks[i].Time = 7
	}

	report := NewChainValidator(f, mbs, WithWorkers(3)).ValidateBlocks(context.Background(), blocks)
	assert.Equal(t, 11, report.Checked)
	require.Len(t, report.Findings, 3)
	for idx, height := range []int64{1, 4, 9} {
		assert.Equal(t, height, report.Findings[idx].Height)
		assert.Equal(t, TamperedBlock, report.Findings[idx].Kind)
	}
	assert.Len(t, report.Messages(), 3)
	assert.Equal(t, map[string]int{string(TamperedBlock): 3}, report.CountByKind())
}

func TestCancelledValidationIsIncomplete(t *testing.T) {
	mbs, f := buildChain(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := NewChainValidator(f, mbs).Validate(ctx)
	assert.True(t, report.Incomplete)
	assert.False(t, report.Valid())
	assert.Equal(t, 0, report.Checked)
}

func TestValidationDoesNotMutateStore(t *testing.T) {
	mbs, f := buildChain(t, 3)
	before := mbs.Snapshot()

	cv := NewChainValidator(f, mbs)
	for i := 0; i < 10; i++ {
		cv.Validate(context.Background())
	}

	assert.Equal(t, before, mbs.Snapshot())
	assert.Equal(t, int64(3), mbs.CurrentHeight())
}
