package interfaces

import (
	"context"

	"github.com/mezonai/starledger/types"
)

type HealthService interface {
	Check(ctx context.Context) (*types.HealthCheckResponse, error)
}
