package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, "500000", cfg.InitialClientBalance.String())
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 1, cfg.CASRetries)
	assert.Equal(t, 3, cfg.TxnIDMaxAttempts)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("STORE_TIMEOUT", "750ms")
	t.Setenv("WORKFLOW_CAS_RETRIES", "3")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("INITIAL_CLIENT_BALANCE", "1000000.50")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMongo, cfg.StoreDriver)
	assert.Equal(t, 750*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, 3, cfg.CASRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "1000000.5", cfg.InitialClientBalance.String())
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := LoadConfig()
	assert.Error(t, err)
}
