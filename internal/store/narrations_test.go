package store

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/narravoapp/narravo-server/internal/domain"
	apperrors "github.com/narravoapp/narravo-server/internal/errors"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenInMemory(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testNarration(id string) *domain.Narration {
	return &domain.Narration{
		ID:             id,
		InputText:      "Hello world",
		SourceLanguage: "en",
		TargetLanguage: "es",
		VoiceID:        "Kore",
		Segments: []domain.Segment{
			{Index: 0, Source: "Hello world", Translated: "Hola mundo", Start: 0, End: 1.5},
		},
		SampleRate: 24000,
		Duration:   1.5,
		AudioSize:  72044,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestCreateAndGetNarration(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	n := testNarration("nar-1")
	audio := []byte("RIFF-payload")
	require.NoError(t, s.CreateNarration(ctx, n, audio))

	got, err := s.GetNarration(ctx, "nar-1")
	require.NoError(t, err)
	assert.Equal(t, n.InputText, got.InputText)
	assert.Equal(t, n.Segments, got.Segments)
	assert.Equal(t, n.VoiceID, got.VoiceID)

	gotAudio, err := s.GetNarrationAudio(ctx, "nar-1")
	require.NoError(t, err)
	assert.Equal(t, audio, gotAudio)
}

func TestGetNarration_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetNarration(context.Background(), "nar-missing")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = s.GetNarrationAudio(context.Background(), "nar-missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestListNarrations_NewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	older := testNarration("nar-old")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := testNarration("nar-new")

	require.NoError(t, s.CreateNarration(ctx, older, []byte("a")))
	require.NoError(t, s.CreateNarration(ctx, newer, []byte("b")))

	list, err := s.ListNarrations(ctx)
	require.NoError(t, err)

	require.Len(t, list, 2)
	assert.Equal(t, "nar-new", list[0].ID)
	assert.Equal(t, "nar-old", list[1].ID)
}

func TestDeleteNarration(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateNarration(ctx, testNarration("nar-1"), []byte("x")))
	require.NoError(t, s.DeleteNarration(ctx, "nar-1"))

	_, err := s.GetNarration(ctx, "nar-1")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = s.GetNarrationAudio(ctx, "nar-1")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound), "audio payload should be deleted with the record")
}

func TestDeleteNarration_NotFound(t *testing.T) {
	s := testStore(t)

	err := s.DeleteNarration(context.Background(), "nar-missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestPlayerSettings_Defaults(t *testing.T) {
	s := testStore(t)

	settings, err := s.GetPlayerSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, settings.Rate)
	assert.Equal(t, 1.0, settings.Volume)
}

func TestPlayerSettings_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	saved := domain.PlayerSettings{Rate: 1.5, Volume: 0.4}
	require.NoError(t, s.SavePlayerSettings(ctx, saved))

	got, err := s.GetPlayerSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}
