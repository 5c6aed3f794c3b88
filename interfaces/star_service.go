package interfaces

import (
	"context"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/types"
)

// StarService is what every API surface calls into. Errors are *errors.ServiceError.
type StarService interface {
	GetChainHeight(ctx context.Context) (*types.HeightResponse, error)
	GetBlockByHeight(ctx context.Context, in *types.GetBlockByHeightRequest) (*block.Block, error)
	GetBlockByHash(ctx context.Context, in *types.GetBlockByHashRequest) (*block.Block, error)
	RequestValidation(ctx context.Context, in *types.RequestValidationRequest) (*types.RequestValidationResponse, error)
	SubmitStar(ctx context.Context, in *types.SubmitStarRequest) (*block.Block, error)
	GetStarsByAddress(ctx context.Context, in *types.GetStarsByAddressRequest) (*types.GetStarsByAddressResponse, error)
	ValidateChain(ctx context.Context) (*types.ValidationResponse, error)
}
