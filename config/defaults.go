package config

import (
	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/sigverify"
)

const (
	DefaultNodeName        = "starledger"
	DefaultHTTPAddr        = ":8000"
	DefaultJSONRPCAddr     = ":8080"
	DefaultGRPCAddr        = ":9090"
	DefaultDomainTag       = "starRegistry"
	DefaultChallengeWindow = 300
	DefaultLogFile         = "./logs/starledger.log"
	DefaultLogMaxSizeMB    = 100
	DefaultLogMaxAgeDays   = 7
	DefaultLogLevel        = "info"
	DefaultRateMaxRequests = 10
	DefaultRateWindow      = 60
)

func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Name:        DefaultNodeName,
		HTTPAddr:    DefaultHTTPAddr,
		JSONRPCAddr: DefaultJSONRPCAddr,
		GRPCAddr:    DefaultGRPCAddr,
	}
}

// DefaultLedgerConfig leaves ValidatorWorkers at 0, which means GOMAXPROCS.
func DefaultLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		HashFunction:           block.HashSHA256,
		DomainTag:              DefaultDomainTag,
		ChallengeWindowSeconds: DefaultChallengeWindow,
	}
}

func DefaultSettings() *Settings {
	return &Settings{
		Ledger:    *DefaultLedgerConfig(),
		Signature: SignatureConfig{Scheme: sigverify.SchemeBitcoin},
		Log: LogConfig{
			File:       DefaultLogFile,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxAgeDays: DefaultLogMaxAgeDays,
			Level:      DefaultLogLevel,
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   DefaultRateMaxRequests,
			WindowSeconds: DefaultRateWindow,
		},
	}
}
