package setup

import (
	"context"
	"testing"
	"time"

	"github.com/itchan-dev/threads/backend/internal/storage/memory"
	"github.com/itchan-dev/threads/shared/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Public: config.Public{
			ThreadsPerPage:   20,
			MaxPageSize:      100,
			PopulateDepth:    2,
			MaxPopulateDepth: 5,
			MaxTextLength:    1000,
			JwtTTL:           time.Hour,
			Storage:          "memory",
		},
		Private: config.Private{JwtKey: "secret"},
	}
}

func TestSetupDependenciesMemory(t *testing.T) {
	deps, err := SetupDependencies(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer deps.Close()

	assert.IsType(t, &memory.Storage{}, deps.Storage)
	assert.NotNil(t, deps.Handler)
	assert.NotNil(t, deps.AuthMiddleware)
	assert.NotNil(t, deps.Repairer)
	assert.NoError(t, deps.Storage.Ping(context.Background()))
}

func TestSetupDependenciesUnknownStorage(t *testing.T) {
	cfg := memoryConfig()
	cfg.Public.Storage = "cassandra"

	_, err := SetupDependencies(context.Background(), cfg)
	assert.Error(t, err)
}
