package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mezonai/starledger/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadNodeConfig(t *testing.T) {
	path := writeFile(t, "node.yml", `
node:
  name: node-a
  http_addr: ":18000"
  metrics_enabled: true
`)

	cfg, err := LoadNodeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "node-a", cfg.Name)
	assert.Equal(t, ":18000", cfg.HTTPAddr)
	assert.True(t, cfg.MetricsEnabled)
	// keys that are not set keep their defaults
	assert.Equal(t, DefaultJSONRPCAddr, cfg.JSONRPCAddr)
	assert.Equal(t, DefaultGRPCAddr, cfg.GRPCAddr)
}

func TestLoadNodeConfigErrors(t *testing.T) {
	_, err := LoadNodeConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	_, err = LoadNodeConfig(writeFile(t, "node.yml", "node: [unclosed"))
	assert.Error(t, err)
}

func TestLoadSettings(t *testing.T) {
	path := writeFile(t, "ledger.ini", `
[ledger]
hash_function = sha3-256
challenge_window_seconds = 120
validator_workers = 4

[signature]
scheme = ed25519

[log]
level = debug
stdout = true

[ratelimit]
max_requests = 3
window_seconds = 30
`)

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "sha3-256", s.Ledger.HashFunction)
	assert.Equal(t, DefaultDomainTag, s.Ledger.DomainTag)
	assert.Equal(t, 2*time.Minute, s.Ledger.ChallengeWindow())
	assert.Equal(t, 4, s.Ledger.ValidatorWorkers)
	assert.Equal(t, "ed25519", s.Signature.Scheme)
	assert.Equal(t, DefaultLogFile, s.Log.File)
	assert.True(t, s.Log.Stdout)
	assert.Equal(t, logx.LevelDebug, s.Log.LogxConfig().Level)
	assert.Equal(t, 3, s.RateLimit.MaxRequests)
	assert.Equal(t, 30*time.Second, s.RateLimit.Window())
}

func TestLoadSettingsRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"hash":      "[ledger]\nhash_function = md5\n",
		"window":    "[ledger]\nchallenge_window_seconds = 0\n",
		"workers":   "[ledger]\nvalidator_workers = -1\n",
		"tag":       "[ledger]\ndomain_tag = \" \"\n",
		"scheme":    "[signature]\nscheme = rsa\n",
		"ratelimit": "[ratelimit]\nmax_requests = -5\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSettings(writeFile(t, "ledger.ini", content))
			assert.Error(t, err)
		})
	}
}

func TestLoadLedgerConfig(t *testing.T) {
	cfg, err := LoadLedgerConfig(writeFile(t, "ledger.ini", "[ledger]\ndomain_tag = testRegistry\n"))
	require.NoError(t, err)
	assert.Equal(t, "testRegistry", cfg.DomainTag)
	assert.Equal(t, int64(DefaultChallengeWindow), cfg.ChallengeWindowSeconds)

	_, err = LoadLedgerConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)
}

func TestDefaultsAreValid(t *testing.T) {
	assert.NoError(t, DefaultLedgerConfig().Validate())
	assert.NoError(t, DefaultSettings().Validate())
}
