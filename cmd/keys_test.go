package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mezonai/starledger/config"
	"github.com/mezonai/starledger/sigverify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const challenge = "addr:1629664849:starRegistry"

func TestKeygenAndSignVerify(t *testing.T) {
	for _, scheme := range []string{sigverify.SchemeBitcoin, sigverify.SchemeEd25519, sigverify.SchemeMinisign} {
		t.Run(scheme, func(t *testing.T) {
			key, address, err := generateKey(scheme, false)
			require.NoError(t, err)

			signer, signature, err := signMessage(scheme, key, challenge, false)
			require.NoError(t, err)
			assert.Equal(t, address, signer)

			v, err := sigverify.NewVerifier(scheme)
			require.NoError(t, err)
			assert.True(t, v.Verify(challenge, address, signature))
			assert.False(t, v.Verify(challenge+"x", address, signature))
		})
	}
}

func TestSignRejectsBadKeys(t *testing.T) {
	_, _, err := signMessage(sigverify.SchemeBitcoin, "zz", challenge, false)
	assert.Error(t, err)
	_, _, err = signMessage(sigverify.SchemeEd25519, "abcd", challenge, false)
	assert.Error(t, err)
	_, _, err = signMessage("rsa", "abcd", challenge, false)
	assert.Error(t, err)
	_, _, err = generateKey("rsa", false)
	assert.Error(t, err)
}

func TestTestnetAddressDiffers(t *testing.T) {
	key, mainnet, err := generateKey(sigverify.SchemeBitcoin, false)
	require.NoError(t, err)
	testnet, _, err := signMessage(sigverify.SchemeBitcoin, key, challenge, true)
	require.NoError(t, err)
	assert.NotEqual(t, mainnet, testnet)
}

func TestLoadConfigurationDefaults(t *testing.T) {
	dir := t.TempDir()
	nodeCfg, settings, err := loadConfiguration(filepath.Join(dir, "missing.yml"), filepath.Join(dir, "missing.ini"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultNodeConfig(), *nodeCfg)
	assert.Equal(t, config.DefaultSettings(), settings)
}

func TestLoadConfigurationFromFiles(t *testing.T) {
	dir := t.TempDir()
	nodePath := filepath.Join(dir, "node.yml")
	iniPath := filepath.Join(dir, "ledger.ini")
	require.NoError(t, os.WriteFile(nodePath, []byte("node:\n  name: alpha\n  http_addr: \":7000\"\n"), 0o600))
	require.NoError(t, os.WriteFile(iniPath, []byte("[ledger]\nchallenge_window_seconds = 60\n[ratelimit]\nmax_requests = 3\n"), 0o600))

	nodeCfg, settings, err := loadConfiguration(nodePath, iniPath)
	require.NoError(t, err)
	assert.Equal(t, "alpha", nodeCfg.Name)
	assert.Equal(t, ":7000", nodeCfg.HTTPAddr)
	assert.Equal(t, config.DefaultGRPCAddr, nodeCfg.GRPCAddr)
	assert.Equal(t, int64(60), settings.Ledger.ChallengeWindowSeconds)

	limiter := newRateLimiter(settings.RateLimit)
	defer limiter.Stop()
	assert.NotNil(t, limiter)
}
