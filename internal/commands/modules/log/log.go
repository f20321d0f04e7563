package log

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"palbot/internal/commands/types"
	"palbot/internal/config"
	"palbot/internal/paginator"
	"palbot/internal/utils"

	"github.com/bwmarrin/discordgo"
)

// tailLines is how much of the newest log /log latest pages through.
const tailLines = 500

var errNoLogs = errors.New("no log files found")

var logRespond = func(s *discordgo.Session, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return s.InteractionRespond(i, resp)
}

var logEdit = func(s *discordgo.Session, i *discordgo.Interaction, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	return s.InteractionResponseEdit(i, edit)
}

// Module lets the bot owner read and download the bot's log files.
type Module struct {
	config *config.Config
	pager  types.Pager
}

func New(deps *types.Dependencies) *Module {
	return &Module{config: deps.Config, pager: deps.Pager}
}

// Register adds the log command to the command map
func (m *Module) Register(cmds map[string]*types.Command, deps *types.Dependencies) {
	m.config = deps.Config

	cmds["log"] = &types.Command{
		ApplicationCommand: &discordgo.ApplicationCommand{
			Name:        "log",
			Description: "Read bot logs (owner only)",
			Contexts:    &[]discordgo.InteractionContextType{discordgo.InteractionContextBotDM, discordgo.InteractionContextPrivateChannel},
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "download",
					Description: "Download all logs as a zip",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "latest",
					Description: "Page through the latest log entries",
				},
			},
		},
		HandlerFunc: m.handleLog,
	}
}

func (m *Module) handleLog(s *discordgo.Session, i *discordgo.InteractionCreate) {
	owner := m.config.GetOwnerID()
	if owner == "" || paginator.InteractionUserID(i.Interaction) != owner {
		_ = logRespond(s, i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "❌ You do not have permission to use this command.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		m.respondError(s, i, "❌ No subcommand provided.")
		return
	}

	switch options[0].Name {
	case "download":
		m.handleLogDownload(s, i)
	case "latest":
		m.handleLogLatest(s, i)
	default:
		m.respondError(s, i, "❌ Unknown subcommand.")
	}
}

func (m *Module) handleLogDownload(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_ = logRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})

	logFiles, err := logFiles(m.config.GetLogDir())
	if err != nil {
		m.editError(s, i, err)
		return
	}

	var buf bytes.Buffer
	if err := writeLogZip(&buf, logFiles); err != nil {
		m.config.Logger.Errorf("Error creating log archive: %v", err)
		m.editError(s, i, errors.New("could not build the log archive"))
		return
	}

	_, err = logEdit(s, i.Interaction, &discordgo.WebhookEdit{
		Content: utils.StringPtr(fmt.Sprintf("📁 Log files archive containing %d files:", len(logFiles))),
		Files: []*discordgo.File{
			{
				Name:        "palbot_logs.zip",
				ContentType: "application/zip",
				Reader:      &buf,
			},
		},
	})
	if err != nil {
		m.config.Logger.Errorf("Error sending log archive: %v", err)
	}
}

func (m *Module) handleLogLatest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	files, err := logFiles(m.config.GetLogDir())
	if err != nil {
		m.respondError(s, i, "❌ "+err.Error()+".")
		return
	}
	latest := files[len(files)-1]

	lines, err := lastLines(latest, tailLines)
	if err != nil {
		m.config.Logger.Errorf("Error reading log file: %v", err)
		m.respondError(s, i, "❌ Error reading log file.")
		return
	}
	if len(lines) == 0 {
		m.respondError(s, i, fmt.Sprintf("❌ %s is empty.", filepath.Base(latest)))
		return
	}

	if m.pager == nil {
		m.respondError(s, i, "❌ Paging is unavailable.")
		return
	}

	source := paginator.NewCodeBlockSource(strings.Join(lines, "\n"))
	if _, err := m.pager.Start(context.Background(), s, i, source, paginator.StartOptions{
		Ephemeral: true,
		Content:   fmt.Sprintf("📄 Latest %d lines from %s", len(lines), filepath.Base(latest)),
	}); err != nil {
		m.config.Logger.Errorf("Error paging log file: %v", err)
		m.respondError(s, i, "❌ Error showing log file.")
	}
}

// logFiles lists the .log files in dir, oldest first. Log names embed
// their creation time, so name order is time order.
func logFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, errors.New("log directory is not configured")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("log directory does not exist")
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	if len(files) == 0 {
		return nil, errNoLogs
	}

	sort.Strings(files)
	return files, nil
}

// writeLogZip deflates every file into a zip written to w.
func writeLogZip(w io.Writer, files []string) error {
	zw := zip.NewWriter(w)
	for _, path := range files {
		if err := addFileToZip(zw, path); err != nil {
			return fmt.Errorf("error adding %s to zip: %w", path, err)
		}
	}
	return zw.Close()
}

func addFileToZip(zw *zip.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(writer, file)
	return err
}

// lastLines returns up to the last n lines of a file.
func lastLines(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

func (m *Module) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_ = logRespond(s, i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: message, Flags: discordgo.MessageFlagsEphemeral},
	})
}

func (m *Module) editError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	_, _ = logEdit(s, i.Interaction, &discordgo.WebhookEdit{Content: utils.StringPtr("❌ " + err.Error() + ".")})
}

// Service returns nil; this module has no background services
func (m *Module) Service() types.ModuleService { return nil }
