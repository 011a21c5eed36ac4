package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickhelper/internal/models"
)

func TestApplySetting(t *testing.T) {
	s := &models.Settings{}

	require.NoError(t, applySetting(s, "generation.modelKey", "gemini|gemini-2.5-flash"))
	require.NoError(t, applySetting(s, "generation.temperature", "0.4"))
	require.NoError(t, applySetting(s, "presence.enabled", "true"))
	require.NoError(t, applySetting(s, "presence.filteredRooms", "standup, ,Retro"))
	require.NoError(t, applySetting(s, "presence.default.emoji", ":headphones:"))
	require.NoError(t, applySetting(s, "presence.room.team.sync.text", "Sync: {{title}}"))

	assert.Equal(t, "gemini|gemini-2.5-flash", s.Generation.ModelKey)
	assert.InDelta(t, 0.4, s.Generation.Temperature, 1e-6)
	assert.True(t, s.Presence.Enabled)
	assert.Equal(t, []string{"standup", "Retro"}, s.Presence.FilteredRooms)
	assert.Equal(t, "headphones", s.Presence.Default.Emoji)
	assert.Equal(t, "Sync: {{title}}", s.Presence.RoomOverrides["team.sync"].Text)
}

func TestApplySetting_RemovesEmptyRoomOverride(t *testing.T) {
	s := &models.Settings{}
	require.NoError(t, applySetting(s, "presence.room.r1.emoji", "calendar"))
	require.NoError(t, applySetting(s, "presence.room.r1.emoji", ""))
	assert.NotContains(t, s.Presence.RoomOverrides, "r1")

	require.NoError(t, applySetting(s, "presence.room.r2.text", "busy"))
	require.NoError(t, applySetting(s, "presence.room.r2", ""))
	assert.NotContains(t, s.Presence.RoomOverrides, "r2")
}

func TestApplySetting_Rejects(t *testing.T) {
	s := &models.Settings{}
	assert.Error(t, applySetting(s, "generation.temperature", "warm"))
	assert.Error(t, applySetting(s, "presence.enabled", "sometimes"))
	assert.Error(t, applySetting(s, "presence.default.colour", "red"))
	assert.Error(t, applySetting(s, "nope", "x"))
}

func TestParseIndex(t *testing.T) {
	i, err := parseIndex("3")
	require.NoError(t, err)
	assert.Equal(t, 3, i)

	_, err = parseIndex("-1")
	assert.Error(t, err)
	_, err = parseIndex("x")
	assert.Error(t, err)
}
