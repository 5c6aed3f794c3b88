package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mezonai/starledger/block"
	"github.com/mezonai/starledger/logx"
	"github.com/mezonai/starledger/sigverify"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// LoadNodeConfig reads and parses node.yml. Missing keys keep their defaults.
func LoadNodeConfig(path string) (*NodeConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open node config: %w", err)
	}
	defer file.Close()

	cfgFile := ConfigFile{Node: DefaultNodeConfig()}
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("decode node config %s: %w", path, err)
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded node config | path=%s | name=%s | http=%s | jsonrpc=%s | grpc=%s", path, cfgFile.Node.Name, cfgFile.Node.HTTPAddr, cfgFile.Node.JSONRPCAddr, cfgFile.Node.GRPCAddr))
	return &cfgFile.Node, nil
}

// LoadSettings reads every section of ledger.ini on top of DefaultSettings.
func LoadSettings(path string) (*Settings, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	settings := DefaultSettings()
	sections := []struct {
		name string
		out  interface{}
	}{
		{"ledger", &settings.Ledger},
		{"signature", &settings.Signature},
		{"log", &settings.Log},
		{"ratelimit", &settings.RateLimit},
	}
	for _, s := range sections {
		if err := cfg.Section(s.name).MapTo(s.out); err != nil {
			return nil, fmt.Errorf("map section [%s]: %w", s.name, err)
		}
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadLedgerConfig reads only the [ledger] section.
func LoadLedgerConfig(path string) (*LedgerConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	ledgerCfg := DefaultLedgerConfig()
	if err := cfg.Section("ledger").MapTo(ledgerCfg); err != nil {
		return nil, fmt.Errorf("map section [ledger]: %w", err)
	}
	if err := ledgerCfg.Validate(); err != nil {
		return nil, err
	}
	return ledgerCfg, nil
}

func (c *LedgerConfig) Validate() error {
	if _, err := block.NewHasher(c.HashFunction); err != nil {
		return fmt.Errorf("ledger.hash_function: %w", err)
	}
	if strings.TrimSpace(c.DomainTag) == "" {
		return fmt.Errorf("ledger.domain_tag must not be empty")
	}
	if c.ChallengeWindowSeconds <= 0 {
		return fmt.Errorf("ledger.challenge_window_seconds must be positive, got %d", c.ChallengeWindowSeconds)
	}
	if c.ValidatorWorkers < 0 {
		return fmt.Errorf("ledger.validator_workers must not be negative, got %d", c.ValidatorWorkers)
	}
	return nil
}

func (c *LedgerConfig) ChallengeWindow() time.Duration {
	return time.Duration(c.ChallengeWindowSeconds) * time.Second
}

func (s *Settings) Validate() error {
	if err := s.Ledger.Validate(); err != nil {
		return err
	}
	if _, err := sigverify.NewVerifier(s.Signature.Scheme); err != nil {
		return fmt.Errorf("signature.scheme: %w", err)
	}
	if s.RateLimit.MaxRequests < 0 || s.RateLimit.WindowSeconds < 0 {
		return fmt.Errorf("ratelimit values must not be negative")
	}
	return nil
}

// LogxConfig converts the [log] section into the logger's configuration.
func (c LogConfig) LogxConfig() logx.Config {
	return logx.Config{
		Filename:   c.File,
		MaxSizeMB:  c.MaxSizeMB,
		MaxAgeDays: c.MaxAgeDays,
		Level:      logx.ParseLevel(c.Level),
		Stdout:     c.Stdout,
	}
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}
