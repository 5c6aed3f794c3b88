package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mezonai/starledger/errors"
	"github.com/mezonai/starledger/interfaces"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/types"
	"github.com/shirou/gopsutil/v3/mem"
)

const Version = "1.0.0"

// ValidationRecorder exposes the outcome of the last chain validation.
type ValidationRecorder interface {
	LastValidation() *types.Validation
}

type HealthServiceImpl struct {
	ledger      interfaces.Ledger
	validations ValidationRecorder
	nodeName    string
	startedAt   time.Time
}

func NewHealthService(ld interfaces.Ledger, validations ValidationRecorder, nodeName string) *HealthServiceImpl {
	return &HealthServiceImpl{
		ledger:      ld,
		validations: validations,
		nodeName:    nodeName,
		startedAt:   time.Now(),
	}
}

func (hs *HealthServiceImpl) Check(ctx context.Context) (*types.HealthCheckResponse, error) {
	select {
	case <-ctx.Done():
		return nil, errors.NewError(errors.ErrCodeInternal, "health check timeout")
	default:
	}

	now := time.Now()
	resp := &types.HealthCheckResponse{
		Status:        types.HealthServing,
		NodeName:      hs.nodeName,
		Version:       Version,
		Timestamp:     now.Unix(),
		UptimeSeconds: int64(now.Sub(hs.startedAt).Seconds()),
		BlockHeight:   -1,
	}

	if hs.ledger == nil {
		resp.Status = types.HealthNotServing
		resp.ErrorMessage = "ledger is not available"
		return resp, nil
	}
	resp.BlockHeight = hs.ledger.GetChainHeight()
	resp.HashFunction = hs.ledger.HashFunction()

	if hs.validations != nil {
		resp.LastValidation = hs.validations.LastValidation()
		if resp.LastValidation != nil && !resp.LastValidation.Valid {
			resp.ErrorMessage = fmt.Sprintf("last chain validation reported %d integrity violations", resp.LastValidation.Findings)
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		resp.MemoryUsedPercent = vm.UsedPercent
	} else {
		logx.Warn("HEALTH", "Failed to read memory usage:", err)
	}

	return resp, nil
}
