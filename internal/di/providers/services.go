package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/narravoapp/narravo-server/internal/config"
	"github.com/narravoapp/narravo-server/internal/gemini"
	"github.com/narravoapp/narravo-server/internal/logger"
	"github.com/narravoapp/narravo-server/internal/service"
)

// ProvideGeminiClient provides the remote generative API client.
func ProvideGeminiClient(i do.Injector) (*gemini.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := gemini.NewClient(cfg.Gemini, log.Logger)

	if !client.Configured() {
		// Not fatal: the server starts, but generation requests fail with a
		// MissingCredential error until GEMINI_API_KEY is set.
		log.Warn("No Gemini API key configured, generation is disabled")
	}

	return client, nil
}

// ProvideNarrationService provides the generation orchestrator.
func ProvideNarrationService(i do.Injector) (*service.NarrationService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	client := do.MustInvoke[*gemini.Client](i)

	return service.NewNarrationService(
		storeHandle.Store,
		client,
		client,
		client,
		sseHandle.Manager,
		cfg.Speech.SampleRate,
		log.Logger,
	), nil
}

// PlaybackHandle wraps the playback service with its clock goroutine.
type PlaybackHandle struct {
	*service.PlaybackService
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *PlaybackHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvidePlaybackService provides the playback controller and starts its clock.
func ProvidePlaybackService(i do.Injector) (*PlaybackHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	playback := service.NewPlaybackService(storeHandle.Store, sseHandle.Manager, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go playback.Run(ctx)

	log.Info("Playback clock started")

	return &PlaybackHandle{
		PlaybackService: playback,
		cancel:          cancel,
	}, nil
}
