package commands

import (
	"path/filepath"
	"sort"
	"testing"

	"palbot/internal/config"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *ModuleHandler {
	t.Helper()
	cfg := config.NewMockConfig(map[string]interface{}{
		"database_path": filepath.Join(t.TempDir(), "palbot.db"),
		"owner_id":      "owner",
	})
	h := NewModuleHandler(cfg)
	t.Cleanup(h.Shutdown)
	return h
}

func TestModuleHandlerRegistersCommands(t *testing.T) {
	h := newTestHandler(t)

	var names []string
	for name := range h.Commands() {
		names = append(names, name)
	}
	sort.Strings(names)

	assert.Equal(t, []string{
		"game", "help", "log", "manga", "paste", "ping", "reddit-video",
		"remind", "snowflake", "status", "time", "timezone", "when",
	}, names)

	for name, cmd := range h.Commands() {
		assert.Equal(t, name, cmd.ApplicationCommand.Name)
		assert.NotNil(t, cmd.HandlerFunc, name)
	}
}

func TestModuleHandlerWiresDependencies(t *testing.T) {
	h := newTestHandler(t)

	require.NotNil(t, h.GetDB())
	require.NotNil(t, h.pager)
	assert.NotNil(t, h.deps.Splitter)
	assert.NotNil(t, h.deps.MangaDex)
	assert.NotNil(t, h.deps.Reddit)
	assert.Nil(t, h.deps.IGDBClient, "no IGDB credentials configured")
	assert.NotNil(t, h.GetModule("remind").Service())
}

type recordingScheduler struct {
	minute, hour int
}

func (r *recordingScheduler) RegisterNewMinuteFunc(fn func() error) { r.minute++ }
func (r *recordingScheduler) RegisterNewHourFunc(fn func() error)   { r.hour++ }

func TestRegisterModuleSchedulers(t *testing.T) {
	h := newTestHandler(t)

	sched := &recordingScheduler{}
	h.RegisterModuleSchedulers(sched)

	assert.Equal(t, 1, sched.minute)
	assert.Equal(t, 1, sched.hour)
}

func TestForeignComponentIsNotClaimedByPaginator(t *testing.T) {
	h := newTestHandler(t)

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: "something_else"},
	}}

	assert.NotPanics(t, func() { h.HandleComponentInteraction(nil, i) })
}
