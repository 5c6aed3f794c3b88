package config

// NodeConfig represents the node section of node.yml
type NodeConfig struct {
	Name           string `yaml:"name"`
	HTTPAddr       string `yaml:"http_addr"`
	JSONRPCAddr    string `yaml:"jsonrpc_addr"`
	GRPCAddr       string `yaml:"grpc_addr"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// ConfigFile is the top-level structure for node.yml
type ConfigFile struct {
	Node NodeConfig `yaml:"node"`
}

type LedgerConfig struct {
	HashFunction           string `ini:"hash_function"`
	DomainTag              string `ini:"domain_tag"`
	ChallengeWindowSeconds int64  `ini:"challenge_window_seconds"`
	ValidatorWorkers       int    `ini:"validator_workers"`
}

type SignatureConfig struct {
	Scheme string `ini:"scheme"`
}

type LogConfig struct {
	File       string `ini:"file"`
	MaxSizeMB  int    `ini:"max_size_mb"`
	MaxAgeDays int    `ini:"max_age_days"`
	Level      string `ini:"level"`
	Stdout     bool   `ini:"stdout"`
}

type RateLimitConfig struct {
	MaxRequests   int `ini:"max_requests"`
	WindowSeconds int `ini:"window_seconds"`
}

// Settings groups every section of ledger.ini
type Settings struct {
	Ledger    LedgerConfig
	Signature SignatureConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}
