package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/narravoapp/narravo-server/internal/domain"
)

func (s *Server) registerPlaybackRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPlaybackState",
		Method:      http.MethodGet,
		Path:        "/api/v1/playback",
		Summary:     "Get playback state",
		Description: "Returns a snapshot of the playback session",
		Tags:        []string{"Playback"},
	}, s.handleGetPlaybackState)

	huma.Register(s.api, huma.Operation{
		OperationID: "loadPlayback",
		Method:      http.MethodPost,
		Path:        "/api/v1/playback/load",
		Summary:     "Load narration",
		Description: "Loads a narration as the playback source, releasing any previous one",
		Tags:        []string{"Playback"},
	}, s.handleLoadPlayback)

	huma.Register(s.api, huma.Operation{
		OperationID: "playPlayback",
		Method:      http.MethodPost,
		Path:        "/api/v1/playback/play",
		Summary:     "Play",
		Description: "Starts or resumes playback; from the end it restarts",
		Tags:        []string{"Playback"},
	}, s.handlePlayPlayback)

	huma.Register(s.api, huma.Operation{
		OperationID: "pausePlayback",
		Method:      http.MethodPost,
		Path:        "/api/v1/playback/pause",
		Summary:     "Pause",
		Description: "Pauses playback, keeping the position",
		Tags:        []string{"Playback"},
	}, s.handlePausePlayback)

	huma.Register(s.api, huma.Operation{
		OperationID: "seekPlayback",
		Method:      http.MethodPost,
		Path:        "/api/v1/playback/seek",
		Summary:     "Seek",
		Description: "Moves the playback position, clamped to the audio duration",
		Tags:        []string{"Playback"},
	}, s.handleSeekPlayback)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPlaybackRate",
		Method:      http.MethodPost,
		Path:        "/api/v1/playback/rate",
		Summary:     "Set rate",
		Description: "Sets the playback rate multiplier; persists across loads",
		Tags:        []string{"Playback"},
	}, s.handleSetPlaybackRate)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPlaybackVolume",
		Method:      http.MethodPost,
		Path:        "/api/v1/playback/volume",
		Summary:     "Set volume",
		Description: "Sets the volume fraction; persists across loads",
		Tags:        []string{"Playback"},
	}, s.handleSetPlaybackVolume)

	huma.Register(s.api, huma.Operation{
		OperationID: "beginScrub",
		Method:      http.MethodPost,
		Path:        "/api/v1/playback/scrub/begin",
		Summary:     "Begin scrub",
		Description: "Starts a drag-seek, pausing a playing source",
		Tags:        []string{"Playback"},
	}, s.handleBeginScrub)

	huma.Register(s.api, huma.Operation{
		OperationID: "commitScrub",
		Method:      http.MethodPost,
		Path:        "/api/v1/playback/scrub/commit",
		Summary:     "Commit scrub",
		Description: "Ends a drag-seek at the given position, resuming if the source was playing",
		Tags:        []string{"Playback"},
	}, s.handleCommitScrub)
}

// === DTOs ===

type PlaybackStateOutput struct {
	Body domain.PlaybackState
}

type LoadPlaybackRequest struct {
	NarrationID string `json:"narration_id" doc:"Narration to load"`
}

type LoadPlaybackInput struct {
	Body LoadPlaybackRequest
}

type PositionRequest struct {
	Position float64 `json:"position" doc:"Position in seconds"`
}

type PositionInput struct {
	Body PositionRequest
}

type RateRequest struct {
	Rate float64 `json:"rate" doc:"Playback rate multiplier"`
}

type RateInput struct {
	Body RateRequest
}

type VolumeRequest struct {
	Volume float64 `json:"volume" doc:"Volume fraction in [0, 1]"`
}

type VolumeInput struct {
	Body VolumeRequest
}

// === Handlers ===

func (s *Server) handleGetPlaybackState(_ context.Context, _ *struct{}) (*PlaybackStateOutput, error) {
	return &PlaybackStateOutput{Body: s.playback.State()}, nil
}

func (s *Server) handleLoadPlayback(ctx context.Context, input *LoadPlaybackInput) (*PlaybackStateOutput, error) {
	state, err := s.playback.Load(ctx, input.Body.NarrationID)
	if err != nil {
		return nil, err
	}
	return &PlaybackStateOutput{Body: state}, nil
}

func (s *Server) handlePlayPlayback(_ context.Context, _ *struct{}) (*PlaybackStateOutput, error) {
	state, err := s.playback.Play()
	if err != nil {
		return nil, err
	}
	return &PlaybackStateOutput{Body: state}, nil
}

func (s *Server) handlePausePlayback(_ context.Context, _ *struct{}) (*PlaybackStateOutput, error) {
	state, err := s.playback.Pause()
	if err != nil {
		return nil, err
	}
	return &PlaybackStateOutput{Body: state}, nil
}

func (s *Server) handleSeekPlayback(_ context.Context, input *PositionInput) (*PlaybackStateOutput, error) {
	state, err := s.playback.Seek(input.Body.Position)
	if err != nil {
		return nil, err
	}
	return &PlaybackStateOutput{Body: state}, nil
}

func (s *Server) handleSetPlaybackRate(_ context.Context, input *RateInput) (*PlaybackStateOutput, error) {
	state, err := s.playback.SetRate(input.Body.Rate)
	if err != nil {
		return nil, err
	}
	return &PlaybackStateOutput{Body: state}, nil
}

func (s *Server) handleSetPlaybackVolume(_ context.Context, input *VolumeInput) (*PlaybackStateOutput, error) {
	state, err := s.playback.SetVolume(input.Body.Volume)
	if err != nil {
		return nil, err
	}
	return &PlaybackStateOutput{Body: state}, nil
}

func (s *Server) handleBeginScrub(_ context.Context, _ *struct{}) (*PlaybackStateOutput, error) {
	state, err := s.playback.BeginScrub()
	if err != nil {
		return nil, err
	}
	return &PlaybackStateOutput{Body: state}, nil
}

func (s *Server) handleCommitScrub(_ context.Context, input *PositionInput) (*PlaybackStateOutput, error) {
	state, err := s.playback.CommitScrub(input.Body.Position)
	if err != nil {
		return nil, err
	}
	return &PlaybackStateOutput{Body: state}, nil
}
