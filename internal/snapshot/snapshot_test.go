package snapshot_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-magic-lair/internal/model"
	"go-magic-lair/internal/snapshot"
)

func TestWrite_ReplacesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "decks.json")
	ctx := context.Background()

	first := []model.Deck{
		{ID: model.DeckID("A"), Name: "A", ImageURL: "u/a", LastUpdated: "2024-01-01"},
		{ID: model.DeckID("B"), Name: "B", ImageURL: "u/b", LastUpdated: "2024-01-02"},
	}
	require.NoError(t, snapshot.Write(ctx, path, first))

	second := []model.Deck{{ID: model.DeckID("C"), Name: "C", ImageURL: "u/c", LastUpdated: "2024-02-01", Status: "BAN"}}
	require.NoError(t, snapshot.Write(ctx, path, second))

	got, err := snapshot.Load(path)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWrite_FormatAndEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decks.json")
	require.NoError(t, snapshot.Write(context.Background(), path, nil))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(b)))

	require.NoError(t, snapshot.Write(context.Background(), path, []model.Deck{{Name: "A", ImageURL: "x", LastUpdated: "2024-01-01"}}))
	b, _ = os.ReadFile(path)
	assert.Contains(t, string(b), "\n  {\n    \"name\": \"A\",")
	assert.Contains(t, string(b), `"cardId": ""`)
}

func TestWrite_CanceledContextLeavesOldFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name":"old"}]`), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, snapshot.Write(ctx, path, nil))
	b, _ := os.ReadFile(path)
	assert.Equal(t, `[{"name":"old"}]`, string(b))
}

func TestDecode_LegacyFormats(t *testing.T) {
	got, err := snapshot.Decode([]byte(`[
		{"name":"Old","imageUrl":"https://x/old.jpg","lastUpdated":"2023-01-01"},
		{"name":"Local","imagePath":"/images/local.jpg","lastUpdated":"2023-02-01"},
		{"lastUpdated":"2023-02-01"},
		{"id":"fixed","name":"New","cardId":"9","imageUrl":"https://x/9.jpg","lastUpdated":"2024-01-01","status":"BAN","extra":1}
	]`))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, model.Deck{ID: model.DeckID("Old"), Name: "Old", ImageURL: "https://x/old.jpg", LastUpdated: "2023-01-01"}, got[0])
	assert.Equal(t, "/images/local.jpg", got[1].ImageURL)
	assert.Equal(t, "", got[1].Status)
	assert.Equal(t, "fixed", got[2].ID)
	assert.True(t, got[2].IsBanned())
}

func TestLoad_Missing(t *testing.T) {
	_, err := snapshot.Load(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}
