// Package di provides dependency injection configuration for the Narravo server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/narravoapp/narravo-server/internal/config"
	"github.com/narravoapp/narravo-server/internal/di/providers"
	"github.com/narravoapp/narravo-server/internal/gemini"
	"github.com/narravoapp/narravo-server/internal/logger"
	"github.com/narravoapp/narravo-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Remote API
	do.Provide(injector, providers.ProvideGeminiClient)

	// Business services
	do.Provide(injector, providers.ProvideNarrationService)
	do.Provide(injector, providers.ProvidePlaybackService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*gemini.Client](injector)
	_ = do.MustInvoke[*service.NarrationService](injector)
	_ = do.MustInvoke[*providers.PlaybackHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
