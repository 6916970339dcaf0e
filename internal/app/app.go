// internal/app/app.go
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inkforge/storyassist/internal/api"
	"github.com/inkforge/storyassist/internal/client"
	"github.com/inkforge/storyassist/internal/config"
	"github.com/inkforge/storyassist/internal/di"
	"github.com/inkforge/storyassist/internal/services"
)

// NewLogger builds the process logger. Debug mode switches to the
// development encoder with human-readable output.
func NewLogger(debugMode bool) (*zap.Logger, error) {
	if debugMode {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// InitServices wires the editing-core services in dependency order and
// registers them in the container for the router to pick up
func InitServices(cfg *config.Config, logger *zap.Logger) error {
	container := di.GetContainer()

	generator := client.NewClient(cfg.BackendURL, logger)
	container.Register("generator", generator)

	sessions := services.NewSessionService(generator, logger)
	container.Register("sessions", sessions)

	hub := api.NewHub(logger)
	container.Register("hub", hub)

	// every session mutation streams to connected shells
	sessions.SetNotifier(func(state services.SessionState) {
		hub.Broadcast(state)
	})

	logger.Info("services initialized",
		zap.Strings("services", container.GetNames()),
		zap.String("backendURL", cfg.BackendURL))
	return nil
}

// CheckServices verifies the critical services are registered before the
// router starts asking for them
func CheckServices() error {
	container := di.GetContainer()
	for _, name := range []string{"generator", "sessions", "hub"} {
		if !container.Has(name) {
			return fmt.Errorf("service not registered: %s", name)
		}
	}
	return nil
}
