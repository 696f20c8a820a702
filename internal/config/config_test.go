package config

import (
	"os"
	"path/filepath"
	"testing"

	"opensea-bid-bot-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "network": "main",
  "api_base_urls": {"main": "https://api.example.com/api/v1"},
  "weth_token_address": {"main": "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"},
  "collections": {
    "supducks": {
      "address": "0x3fe1a4c1481c8351e91b64d5c398b159de07cbc5",
      "strategy": {"resell_price_eth": 1.06, "margin": 0.1}
    },
    "floorpriced": {
      "address": "0xa234c5a67d62c965d5f9380ad22255338c223e06",
      "strategy": {"margin": 0.1}
    },
    "noaddress": {
      "strategy": {"margin": 0.1}
    },
    "nomargin": {
      "address": "0xa234c5a67d62c965d5f9380ad22255338c223e06",
      "strategy": {}
    }
  },
  "journal_db_path": "journal.db",
  "log": {"level": "info", "output": "console"}
}`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTempConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Network)
	assert.Equal(t, 1, cfg.RateLimitTokens)
	assert.Equal(t, 5, cfg.RateLimitIntervalSec)
	assert.Equal(t, int64(24*3600), cfg.DefaultExpirationSec)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestResolveCollection(t *testing.T) {
	cfg, err := LoadConfig(writeTempConfig(t, sampleConfig))
	require.NoError(t, err)

	entry, err := ResolveCollection(cfg, "supducks")
	require.NoError(t, err)
	assert.Equal(t, "0x3fe1a4c1481c8351e91b64d5c398b159de07cbc5", entry.Address)
	require.NotNil(t, entry.Strategy.ResellPriceETH)
	assert.Equal(t, 1.06, *entry.Strategy.ResellPriceETH)

	// Resell price may be omitted; the floor price is substituted later.
	entry, err = ResolveCollection(cfg, "floorpriced")
	require.NoError(t, err)
	assert.Nil(t, entry.Strategy.ResellPriceETH)
}

func TestResolveCollectionErrors(t *testing.T) {
	cfg, err := LoadConfig(writeTempConfig(t, sampleConfig))
	require.NoError(t, err)

	var cfgErr *models.ConfigurationError

	_, err = ResolveCollection(cfg, "unknown")
	assert.ErrorAs(t, err, &cfgErr)

	_, err = ResolveCollection(cfg, "noaddress")
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "address", cfgErr.Field)

	_, err = ResolveCollection(cfg, "nomargin")
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "strategy.margin", cfgErr.Field)
}

func TestNetworkLookups(t *testing.T) {
	cfg, err := LoadConfig(writeTempConfig(t, sampleConfig))
	require.NoError(t, err)

	u, err := APIBaseURL(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api/v1", u)

	addr, err := PaymentTokenAddress(cfg)
	require.NoError(t, err)
	assert.Equal(t, "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", addr)

	cfg.Network = "rinkeby"
	_, err = APIBaseURL(cfg)
	assert.Error(t, err)
	_, err = PaymentTokenAddress(cfg)
	assert.Error(t, err)
}
