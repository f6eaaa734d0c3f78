package site_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-magic-lair/internal/model"
	"go-magic-lair/internal/site"
	"go-magic-lair/internal/view"
)

func TestWriteTerminal(t *testing.T) {
	decks := []model.Deck{
		deck("Bolt", "2024-02-01", ""),
		deck("Azam", "2024-05-01", "BAN"),
		deck("Freed", "2024-05-01", "FREE"),
	}
	var buf bytes.Buffer
	require.NoError(t, site.WriteTerminal(&buf, "Magic Lair", view.Derive(decks, view.Options{Query: "  A  "})))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Contains(t, lines[0], "Magic Lair")
	assert.Contains(t, lines[0], "(latest 2024-05-01)")
	assert.Contains(t, lines[1], "Azam")
	assert.Contains(t, lines[1], "May 1, 2024")
	assert.Contains(t, lines[1], "NEW")
	assert.NotContains(t, buf.String(), "Bolt")
	assert.Contains(t, buf.String(), "Now Free: Freed")
	assert.Contains(t, buf.String(), "Now Banned: Azam")
}

func TestWriteTerminal_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, site.WriteTerminal(&buf, "T", view.Derive(nil, view.Options{})))
	assert.Contains(t, buf.String(), "No decks found")
	assert.NotContains(t, buf.String(), "Last Changes")
}
