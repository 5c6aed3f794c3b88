package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/errors"
	"github.com/mezonai/starledger/events"
	"github.com/mezonai/starledger/interfaces"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/monitoring"
	"github.com/mezonai/starledger/security/ratelimit"
	"github.com/mezonai/starledger/security/validation"
	"github.com/mezonai/starledger/types"
	"github.com/mezonai/starledger/utils"
)

type StarServiceImpl struct {
	ledger  interfaces.Ledger
	limiter *ratelimit.GlobalRateLimiter
	router  *events.EventRouter
	clock   utils.Clock

	mu             sync.RWMutex
	lastValidation *types.Validation
}

// NewStarService wires the ledger behind the API surfaces. limiter and router are
// optional.
func NewStarService(ld interfaces.Ledger, limiter *ratelimit.GlobalRateLimiter, router *events.EventRouter) *StarServiceImpl {
	return &StarServiceImpl{
		ledger:  ld,
		limiter: limiter,
		router:  router,
		clock:   utils.SystemClock,
	}
}

func (s *StarServiceImpl) GetChainHeight(ctx context.Context) (*types.HeightResponse, error) {
	tip, ok := s.ledger.GetLastBlock()
	if !ok {
		return &types.HeightResponse{Height: -1}, nil
	}
	return &types.HeightResponse{Height: tip.Height, Hash: tip.Hash}, nil
}

func (s *StarServiceImpl) GetBlockByHeight(ctx context.Context, in *types.GetBlockByHeightRequest) (*block.Block, error) {
	if in == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidRequest, errors.ErrMsgInvalidRequest)
	}
	b, ok := s.ledger.GetBlockByHeight(in.Height)
	if !ok {
		return nil, errors.NewBlockNotFound()
	}
	return b, nil
}

func (s *StarServiceImpl) GetBlockByHash(ctx context.Context, in *types.GetBlockByHashRequest) (*block.Block, error) {
	if in == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidRequest, errors.ErrMsgInvalidRequest)
	}
	if err := validation.ValidateRequired(validation.HashField, in.Hash); err != nil {
		return nil, err
	}
	if err := validation.ValidateShortTextLength(validation.HashField, in.Hash); err != nil {
		return nil, err
	}
	b, ok := s.ledger.GetBlockByHash(in.Hash)
	if !ok {
		return nil, errors.NewBlockNotFound()
	}
	return b, nil
}

func (s *StarServiceImpl) RequestValidation(ctx context.Context, in *types.RequestValidationRequest) (*types.RequestValidationResponse, error) {
	if in == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidRequest, errors.ErrMsgInvalidRequest)
	}
	if err := validation.ValidateAddress(in.Address); err != nil {
		return nil, err
	}
	return &types.RequestValidationResponse{
		Address:       in.Address,
		Message:       s.ledger.RequestMessageOwnershipVerification(in.Address),
		WindowSeconds: int64(s.ledger.ChallengeWindow().Seconds()),
	}, nil
}

func (s *StarServiceImpl) SubmitStar(ctx context.Context, in *types.SubmitStarRequest) (*block.Block, error) {
	if in == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidRequest, errors.ErrMsgInvalidRequest)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewError(errors.ErrCodeInvalidRequest, err.Error())
	}
	if err := validation.ValidateSubmission(in.Address, in.Message, in.Signature, in.Star); err != nil {
		monitoring.RecordRejectedSubmission(monitoring.SubmissionInvalidPayload)
		s.publishRejected(in.Address, errors.ErrCodeInvalidRequest)
		return nil, err
	}
	if s.limiter != nil {
		if !s.limiter.AllowIPWithContext(ctx, in.ClientIP) || !s.limiter.AllowWalletWithContext(ctx, in.Address) {
			monitoring.RecordRejectedSubmission(monitoring.SubmissionRateLimited)
			s.publishRejected(in.Address, errors.ErrCodeRateLimited)
			return nil, errors.NewError(errors.ErrCodeRateLimited, errors.ErrMsgRateLimited)
		}
	}

	sealed, err := s.ledger.SubmitStar(in.Address, in.Message, in.Signature, in.Star)
	if err != nil {
		se := errors.FromError(err)
		if se.Code == errors.ErrCodeInternal {
			logx.Error("STAR_SERVICE", fmt.Sprintf("Submit star failed | address=%s | err=%v", in.Address, err))
		}
		s.publishRejected(in.Address, se.Code)
		return nil, se
	}
	return sealed, nil
}

func (s *StarServiceImpl) GetStarsByAddress(ctx context.Context, in *types.GetStarsByAddressRequest) (*types.GetStarsByAddressResponse, error) {
	if in == nil {
		return nil, errors.NewError(errors.ErrCodeInvalidRequest, errors.ErrMsgInvalidRequest)
	}
	if err := validation.ValidateAddress(in.Address); err != nil {
		return nil, err
	}
	return &types.GetStarsByAddressResponse{
		Address: in.Address,
		Stars:   s.ledger.GetStarsByWalletAddress(in.Address),
	}, nil
}

func (s *StarServiceImpl) ValidateChain(ctx context.Context) (*types.ValidationResponse, error) {
	report := s.ledger.ValidateChain(ctx)

	s.mu.Lock()
	s.lastValidation = &types.Validation{
		Valid:     report.Valid(),
		Height:    report.Height,
		Findings:  len(report.Findings),
		Timestamp: utils.UnixSeconds(s.clock()),
	}
	s.mu.Unlock()

	if s.router != nil {
		s.router.PublishChainValidated(report.Height, report.Checked, len(report.Findings), report.Valid(), report.Incomplete)
	}
	return types.NewValidationResponse(report), nil
}

// LastValidation returns a copy of the most recent validation summary, or nil.
func (s *StarServiceImpl) LastValidation() *types.Validation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastValidation == nil {
		return nil
	}
	v := *s.lastValidation
	return &v
}

func (s *StarServiceImpl) publishRejected(address string, code errors.ServiceErrorCode) {
	if s.router != nil {
		s.router.PublishSubmissionRejected(address, string(code))
	}
}
