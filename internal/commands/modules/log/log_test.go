package log

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"palbot/internal/commands/types"
	"palbot/internal/config"
	"palbot/internal/paginator"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePager struct {
	source paginator.PageSource
	opts   paginator.StartOptions
}

func (f *fakePager) Start(_ context.Context, _ *discordgo.Session, _ *discordgo.InteractionCreate, source paginator.PageSource, so paginator.StartOptions) (*paginator.View, error) {
	f.source = source
	f.opts = so
	return nil, nil
}

func writeLog(t *testing.T, dir, name string, lines int) string {
	t.Helper()
	var b strings.Builder
	for n := 1; n <= lines; n++ {
		fmt.Fprintf(&b, "line %d\n", n)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func commandInteraction(userID, sub string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		User: &discordgo.User{ID: userID},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    "log",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{{Name: sub, Type: discordgo.ApplicationCommandOptionSubCommand}},
		},
	}}
}

func newTestModule(t *testing.T, dir string) (*Module, *fakePager, *[]*discordgo.InteractionResponse) {
	t.Helper()
	cfg := config.NewMockConfig(map[string]interface{}{"owner_id": "owner", "log_dir": dir})
	pager := &fakePager{}
	m := New(&types.Dependencies{Config: cfg, Pager: pager})

	var responses []*discordgo.InteractionResponse
	orig := logRespond
	logRespond = func(_ *discordgo.Session, _ *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
		responses = append(responses, resp)
		return nil
	}
	t.Cleanup(func() { logRespond = orig })
	return m, pager, &responses
}

func TestLogFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "palbot_2024-01-02.log", 1)
	writeLog(t, dir, "palbot_2024-01-01.log", 1)
	writeLog(t, dir, "notes.txt", 1)

	files, err := logFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "palbot_2024-01-01.log"),
		filepath.Join(dir, "palbot_2024-01-02.log"),
	}, files)

	_, err = logFiles(t.TempDir())
	assert.ErrorIs(t, err, errNoLogs)

	_, err = logFiles(filepath.Join(dir, "missing"))
	assert.EqualError(t, err, "log directory does not exist")
}

func TestLastLines(t *testing.T) {
	path := writeLog(t, t.TempDir(), "a.log", 10)

	lines, err := lastLines(path, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 8", "line 9", "line 10"}, lines)

	lines, err = lastLines(path, 50)
	require.NoError(t, err)
	assert.Len(t, lines, 10)
}

func TestWriteLogZip(t *testing.T) {
	dir := t.TempDir()
	a := writeLog(t, dir, "a.log", 2)
	b := writeLog(t, dir, "b.log", 3)

	var buf bytes.Buffer
	require.NoError(t, writeLogZip(&buf, []string{a, b}))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "a.log", zr.File[0].Name)
	assert.Equal(t, "b.log", zr.File[1].Name)
}

func TestLatestPagesThroughNewestLog(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "palbot_2024-01-01.log", 5)
	writeLog(t, dir, "palbot_2024-01-02.log", 3)
	m, pager, responses := newTestModule(t, dir)

	m.handleLog(nil, commandInteraction("owner", "latest"))

	assert.Empty(t, *responses)
	require.NotNil(t, pager.source)
	assert.True(t, pager.opts.Ephemeral)
	assert.Equal(t, "📄 Latest 3 lines from palbot_2024-01-02.log", pager.opts.Content)

	page, err := pager.source.Page(0)
	require.NoError(t, err)
	assert.Contains(t, page, "line 3")
}

func TestLogRejectsNonOwner(t *testing.T) {
	m, pager, responses := newTestModule(t, t.TempDir())

	m.handleLog(nil, commandInteraction("someone", "latest"))

	require.Len(t, *responses, 1)
	assert.Contains(t, (*responses)[0].Data.Content, "do not have permission")
	assert.Equal(t, discordgo.MessageFlagsEphemeral, (*responses)[0].Data.Flags)
	assert.Nil(t, pager.source)
}

func TestLatestWithoutLogs(t *testing.T) {
	m, _, responses := newTestModule(t, t.TempDir())

	m.handleLog(nil, commandInteraction("owner", "latest"))

	require.Len(t, *responses, 1)
	assert.Equal(t, "❌ no log files found.", (*responses)[0].Data.Content)
}
