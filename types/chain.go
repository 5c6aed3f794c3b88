package types

import "github.com/mezonai/starledger/validator"

// HeightResponse carries the tip height and hash read together.
type HeightResponse struct {
	Height int64  `json:"height"`
	Hash   string `json:"hash"`
}

type ValidationResponse struct {
	Valid      bool                `json:"valid"`
	Height     int64               `json:"height"`
	Checked    int                 `json:"checked"`
	Incomplete bool                `json:"incomplete"`
	Findings   []validator.Finding `json:"findings"`
	Messages   []string            `json:"messages"`
}

func NewValidationResponse(r validator.Report) *ValidationResponse {
	findings := r.Findings
	if findings == nil {
		findings = []validator.Finding{}
	}
	return &ValidationResponse{
		Valid:      r.Valid(),
		Height:     r.Height,
		Checked:    r.Checked,
		Incomplete: r.Incomplete,
		Findings:   findings,
		Messages:   r.Messages(),
	}
}

type HealthStatus string

const (
	HealthServing    HealthStatus = "SERVING"
	HealthNotServing HealthStatus = "NOT_SERVING"
)

type HealthCheckResponse struct {
	Status            HealthStatus `json:"status"`
	NodeName          string       `json:"nodeName"`
	Version           string       `json:"version"`
	Timestamp         int64        `json:"timestamp"`
	UptimeSeconds     int64        `json:"uptimeSeconds"`
	BlockHeight       int64        `json:"blockHeight"`
	HashFunction      string       `json:"hashFunction"`
	LastValidation    *Validation  `json:"lastValidation,omitempty"`
	MemoryUsedPercent float64      `json:"memoryUsedPercent"`
	ErrorMessage      string       `json:"errorMessage,omitempty"`
}

// Validation summarizes the most recent chain validation run
type Validation struct {
	Valid     bool  `json:"valid"`
	Height    int64 `json:"height"`
	Findings  int   `json:"findings"`
	Timestamp int64 `json:"timestamp"`
}
