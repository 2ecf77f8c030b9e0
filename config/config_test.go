package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	cfg, err := InitConfig()
	require.NoError(t, err)

	t.Run("CORSOriginsComeFromConfig", func(t *testing.T) {
		assert.NotEmpty(t, cfg.Server.CORSOrigins)
		assert.Contains(t, cfg.Server.CORSOrigins, "https://reservation.schmidt-groupe.fr")
	})

	t.Run("StoreAuthDefaultsApplied", func(t *testing.T) {
		assert.Equal(t, 3, cfg.StoreAuth.MinStoreIDLen)
		assert.Equal(t, 32, cfg.StoreAuth.MinTokenLen)
		assert.Equal(t, 3, cfg.StoreAuth.ProfileRetries)
	})
}
