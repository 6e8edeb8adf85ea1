package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/narravoapp/narravo-server/internal/domain"
	apperrors "github.com/narravoapp/narravo-server/internal/errors"
	"github.com/narravoapp/narravo-server/internal/sse"
	"github.com/narravoapp/narravo-server/internal/store"
)

// tickInterval is how often the playback clock advances and republishes
// position while playing.
const tickInterval = 250 * time.Millisecond

// PlaybackService is the single point of control for the one playable audio
// source. It owns the playback state machine
//
//	Empty -> Loaded -> {Playing <-> Paused} -> Ended
//
// and republishes position/state over SSE. All state lives behind one mutex
// and is mutated only through the operations below.
type PlaybackService struct {
	store  *store.Store
	events EventEmitter
	logger *slog.Logger

	mu        sync.Mutex
	narration *domain.Narration
	status    domain.PlaybackStatus
	position  float64
	rate      float64
	volume    float64

	// Drag-scrub state. While scrubbing, clock ticks do not move the
	// published position; the drag position takes precedence until commit.
	scrubbing  bool
	wasPlaying bool

	// lastTick anchors position advancement while playing.
	lastTick time.Time
}

// NewPlaybackService creates the playback controller, restoring persisted
// rate and volume preferences.
func NewPlaybackService(st *store.Store, events EventEmitter, logger *slog.Logger) *PlaybackService {
	settings, err := st.GetPlayerSettings(context.Background())
	if err != nil {
		logger.Warn("Failed to load player settings, using defaults", "error", err)
		settings = domain.DefaultPlayerSettings()
	}

	return &PlaybackService{
		store:  st,
		events: events,
		logger: logger,
		status: domain.PlaybackEmpty,
		rate:   settings.Rate,
		volume: settings.Volume,
	}
}

// Run drives the playback clock until the context is canceled. Started once
// at server startup in a goroutine.
func (s *PlaybackService) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.tick(now)
		case <-ctx.Done():
			return
		}
	}
}

// State returns a snapshot of the observable playback state.
func (s *PlaybackService) State() domain.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// stateLocked builds the state snapshot. Callers must hold mu.
func (s *PlaybackService) stateLocked() domain.PlaybackState {
	state := domain.PlaybackState{
		Status:        s.status,
		Position:      s.position,
		Rate:          s.rate,
		Volume:        s.volume,
		Scrubbing:     s.scrubbing,
		ActiveSegment: -1,
	}
	if s.narration != nil {
		state.NarrationID = s.narration.ID
		state.Duration = s.narration.Duration
		state.ActiveSegment = s.narration.ActiveSegmentAt(s.position)
	}
	return state
}

// Load assigns a narration as the playback source. Any previous source is
// released first; position resets but rate and volume carry over.
func (s *PlaybackService) Load(ctx context.Context, narrationID string) (domain.PlaybackState, error) {
	narration, err := s.store.GetNarration(ctx, narrationID)
	if err != nil {
		return domain.PlaybackState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Release the previous source: back to Empty, then straight to Loaded
	// since the container already reports its duration.
	s.narration = nil
	s.status = domain.PlaybackEmpty
	s.position = 0
	s.scrubbing = false
	s.wasPlaying = false

	s.narration = narration
	s.status = domain.PlaybackLoaded

	s.logger.Info("Playback source loaded",
		"narration_id", narration.ID, "duration_s", narration.Duration)

	return s.publishStateLocked(), nil
}

// Play starts or resumes playback. From Ended it restarts at the beginning.
func (s *PlaybackService) Play() (domain.PlaybackState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case domain.PlaybackEmpty:
		return domain.PlaybackState{}, apperrors.InvalidState("no audio loaded")
	case domain.PlaybackPlaying:
		return s.stateLocked(), nil
	case domain.PlaybackEnded:
		s.position = 0
	case domain.PlaybackLoaded, domain.PlaybackPaused:
		// resume from current position
	}

	s.status = domain.PlaybackPlaying
	s.lastTick = time.Now()
	return s.publishStateLocked(), nil
}

// Pause suspends playback, keeping the position.
func (s *PlaybackService) Pause() (domain.PlaybackState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.PlaybackEmpty {
		return domain.PlaybackState{}, apperrors.InvalidState("no audio loaded")
	}
	if s.status != domain.PlaybackPlaying {
		return s.stateLocked(), nil
	}

	s.advanceLocked(time.Now())
	if s.status == domain.PlaybackPlaying {
		s.status = domain.PlaybackPaused
	}
	return s.publishStateLocked(), nil
}

// Seek moves the position, clamped to [0, duration]. Seeking out of Ended
// returns to Paused; a playing source keeps playing.
func (s *PlaybackService) Seek(position float64) (domain.PlaybackState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.PlaybackEmpty {
		return domain.PlaybackState{}, apperrors.InvalidState("no audio loaded")
	}

	s.position = s.clampLocked(position)
	if s.status == domain.PlaybackEnded && s.position < s.narration.Duration {
		s.status = domain.PlaybackPaused
	}
	if s.status == domain.PlaybackPlaying {
		s.lastTick = time.Now()
	}
	return s.publishStateLocked(), nil
}

// BeginScrub starts a drag-seek. A playing source is paused so scrubbing
// does not stutter; position republishing is suspended until commit.
func (s *PlaybackService) BeginScrub() (domain.PlaybackState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.PlaybackEmpty {
		return domain.PlaybackState{}, apperrors.InvalidState("no audio loaded")
	}
	if s.scrubbing {
		return s.stateLocked(), nil
	}

	s.wasPlaying = s.status == domain.PlaybackPlaying
	if s.wasPlaying {
		s.advanceLocked(time.Now())
		s.status = domain.PlaybackPaused
	}
	s.scrubbing = true
	return s.publishStateLocked(), nil
}

// CommitScrub ends a drag-seek at the committed position and resumes
// playback if the source was playing when the drag began.
func (s *PlaybackService) CommitScrub(position float64) (domain.PlaybackState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.PlaybackEmpty {
		return domain.PlaybackState{}, apperrors.InvalidState("no audio loaded")
	}
	if !s.scrubbing {
		return domain.PlaybackState{}, apperrors.InvalidState("no scrub in progress")
	}

	s.scrubbing = false
	s.position = s.clampLocked(position)

	if s.wasPlaying && s.position < s.narration.Duration {
		s.status = domain.PlaybackPlaying
		s.lastTick = time.Now()
	} else if s.status == domain.PlaybackEnded && s.position < s.narration.Duration {
		s.status = domain.PlaybackPaused
	}
	s.wasPlaying = false
	return s.publishStateLocked(), nil
}

// SetRate changes the playback rate multiplier. Persists across loads and
// restarts.
func (s *PlaybackService) SetRate(rate float64) (domain.PlaybackState, error) {
	if rate < 0.25 || rate > 4 {
		return domain.PlaybackState{}, apperrors.Validationf("rate %g out of range [0.25, 4]", rate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Advance under the old rate before switching.
	if s.status == domain.PlaybackPlaying {
		s.advanceLocked(time.Now())
	}
	s.rate = rate
	s.persistSettingsLocked()
	return s.publishStateLocked(), nil
}

// SetVolume changes the volume fraction. Persists across loads and restarts.
func (s *PlaybackService) SetVolume(volume float64) (domain.PlaybackState, error) {
	if volume < 0 || volume > 1 {
		return domain.PlaybackState{}, apperrors.Validationf("volume %g out of range [0, 1]", volume)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = volume
	s.persistSettingsLocked()
	return s.publishStateLocked(), nil
}

// tick advances the playback clock and republishes position.
func (s *PlaybackService) tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.PlaybackPlaying || s.scrubbing {
		return
	}

	ended := s.advanceLocked(now)
	if ended {
		s.publishStateLocked()
		return
	}

	s.events.Emit(sse.NewEvent(sse.EventPlaybackPosition, sse.PlaybackPositionData{
		NarrationID:   s.narration.ID,
		Position:      s.position,
		Duration:      s.narration.Duration,
		ActiveSegment: s.narration.ActiveSegmentAt(s.position),
	}))
}

// advanceLocked moves the position forward by elapsed wall time times rate.
// Returns true if playback just ended. Callers must hold mu and be Playing.
func (s *PlaybackService) advanceLocked(now time.Time) bool {
	elapsed := now.Sub(s.lastTick).Seconds()
	s.lastTick = now
	if elapsed <= 0 {
		return false
	}

	s.position += elapsed * s.rate
	if s.position >= s.narration.Duration {
		s.position = s.narration.Duration
		s.status = domain.PlaybackEnded
		s.logger.Debug("Playback ended", "narration_id", s.narration.ID)
		return true
	}
	return false
}

// clampLocked clamps a requested position to [0, duration].
func (s *PlaybackService) clampLocked(position float64) float64 {
	if position < 0 {
		return 0
	}
	if s.narration != nil && position > s.narration.Duration {
		return s.narration.Duration
	}
	return position
}

// publishStateLocked emits the current state over SSE and returns it.
func (s *PlaybackService) publishStateLocked() domain.PlaybackState {
	state := s.stateLocked()
	s.events.Emit(sse.NewEvent(sse.EventPlaybackState, sse.PlaybackStateData{State: state}))
	return state
}

// persistSettingsLocked saves rate and volume, best-effort.
func (s *PlaybackService) persistSettingsLocked() {
	settings := domain.PlayerSettings{Rate: s.rate, Volume: s.volume}
	if err := s.store.SavePlayerSettings(context.Background(), settings); err != nil {
		s.logger.Warn("Failed to persist player settings", "error", err)
	}
}
