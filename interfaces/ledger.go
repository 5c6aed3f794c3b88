package interfaces

import (
	"context"
	"time"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/validator"
)

// Ledger interface defines the ledger operations the services depend on
type Ledger interface {
	GetChainHeight() int64
	GetLastBlock() (*block.Block, bool)
	RequestMessageOwnershipVerification(address string) string
	SubmitStar(address, message, signature string, star block.Star) (*block.Block, error)
	GetBlockByHash(hash string) (*block.Block, bool)
	GetBlockByHeight(height int64) (*block.Block, bool)
	GetStarsByWalletAddress(address string) []block.StarRecord
	ValidateChain(ctx context.Context) validator.Report
	HashFunction() string
	ChallengeWindow() time.Duration
}
