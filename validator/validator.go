package validator

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/monitoring"
	"golang.org/x/sync/errgroup"
)

// ChainSource hands out an immutable copy of the chain.
type ChainSource interface {
	Snapshot() []block.Block
}

type Option func(*ChainValidator)

// WithWorkers bounds the number of concurrent hash recomputations.
func WithWorkers(n int) Option {
	return func(cv *ChainValidator) {
		if n > 0 {
			cv.workers = n
		}
	}
}

// ChainValidator audits a chain: every block's hash is recomputed and every link
// to the previous block is compared. It never stops at the first failure.
type ChainValidator struct {
	factory *block.Factory
	source  ChainSource
	workers int
}

func NewChainValidator(factory *block.Factory, source ChainSource, opts ...Option) *ChainValidator {
	cv := &ChainValidator{
		factory: factory,
		source:  source,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(cv)
	}
	return cv
}

// Validate audits a snapshot of the source chain.
func (cv *ChainValidator) Validate(ctx context.Context) Report {
	return cv.ValidateBlocks(ctx, cv.source.Snapshot())
}

// ValidateBlocks audits blocks, which must not be modified while the call runs.
// Position i in the slice is the height findings are reported at.
func (cv *ChainValidator) ValidateBlocks(ctx context.Context, blocks []block.Block) Report {
	start := time.Now()
	report := Report{Height: int64(len(blocks)) - 1}

	tampered := make([]*Finding, len(blocks))
	checked := make([]bool, len(blocks))

	var g errgroup.Group
	g.SetLimit(cv.workers)
	for i := range blocks {
		if ctx.Err() != nil {
			report.Incomplete = true
			break
		}
		i := i
		g.Go(func() error {
			tampered[i] = cv.checkHash(int64(i), blocks[i])
			checked[i] = true
			return nil
		})
	}
	_ = g.Wait()

	findings := make([]Finding, 0)
	for i := range blocks {
		if !checked[i] {
			continue
		}
		report.Checked++
		if tampered[i] != nil {
			findings = append(findings, *tampered[i])
		}
		if f := checkLink(int64(i), blocks); f != nil {
			findings = append(findings, *f)
		}
	}
	sortFindings(findings)
	report.Findings = findings

	monitoring.RecordValidation(report.CountByKind())
	if report.Valid() {
		logx.Info("VALIDATOR", fmt.Sprintf("Chain valid | blocks=%d | took=%s", report.Checked, time.Since(start)))
	} else {
		logx.Warn("VALIDATOR", fmt.Sprintf("Chain integrity violations | blocks=%d | findings=%d | incomplete=%t", report.Checked, len(findings), report.Incomplete))
		for _, f := range findings {
			logx.Warn("VALIDATOR", f.String())
		}
	}
	return report
}

func (cv *ChainValidator) checkHash(height int64, b block.Block) *Finding {
	recomputed, err := cv.factory.ComputeHash(b)
	if err != nil {
		return &Finding{Kind: TamperedBlock, Height: height, Expected: b.Hash, Actual: err.Error()}
	}
	if recomputed != b.Hash {
		return &Finding{Kind: TamperedBlock, Height: height, Expected: recomputed, Actual: b.Hash}
	}
	return nil
}

func checkLink(height int64, blocks []block.Block) *Finding {
	current := blocks[height]
	if height == 0 {
		if current.PreviousBlockHash != "" {
			return &Finding{Kind: BrokenLink, Height: 0, Expected: "", Actual: current.PreviousBlockHash}
		}
		return nil
	}
	previous := blocks[height-1]
	if current.PreviousBlockHash != previous.Hash {
		return &Finding{Kind: BrokenLink, Height: height, Expected: previous.Hash, Actual: current.PreviousBlockHash}
	}
	return nil
}
