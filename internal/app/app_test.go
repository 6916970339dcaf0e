// internal/app/app_test.go
package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/config"
	"github.com/inkforge/storyassist/internal/di"
)

func TestInitAndCheckServices(t *testing.T) {
	require.Error(t, CheckServices(), "an empty container fails the check")

	cfg := &config.Config{BackendURL: "http://localhost:8000"}
	require.NoError(t, InitServices(cfg, zap.NewNop()))
	require.NoError(t, CheckServices())

	container := di.GetContainer()
	assert.True(t, container.Has("sessions"))
	assert.NotNil(t, container.Get("generator"))
	assert.NotNil(t, container.Get("hub"))
}
