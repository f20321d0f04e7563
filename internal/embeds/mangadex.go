package embeds

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"palbot/internal/mangadex"

	"github.com/bwmarrin/discordgo"
)

const (
	colorRed  = 0xe74c3c
	colorBlue = 0x3498db

	descriptionWidth = 2000
	shortenMarker    = " [...]"
)

// Manga describes a series. The cover is only shown for safe titles unless
// nsfwAllowed is set.
func Manga(m *mangadex.Manga, nsfwAllowed bool) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: m.Title,
		URL:   m.URL(),
		Color: colorBlue,
	}
	if m.Description != "" {
		e.Description = Shorten(m.Description, descriptionWidth)
	}
	if len(m.Tags) > 0 {
		addField(e, "Tags:", strings.Join(m.Tags, ", "), false)
	}
	if m.Demographic != "" {
		addField(e, "Publication Demographic:", titleCase(m.Demographic), true)
	}
	if m.ContentRating != "" {
		addField(e, "Content Rating:", titleCase(m.ContentRating), false)
	}
	if len(m.Artists) > 0 {
		addField(e, "Attributed Artists:", strings.Join(m.Artists, ", "), true)
	}
	if len(m.Authors) > 0 {
		addField(e, "Attributed Authors:", strings.Join(m.Authors, ", "), true)
	}
	if m.Status != "" {
		addField(e, "Publication status:", titleCase(m.Status), false)
		if m.Status == mangadex.StatusCompleted {
			addField(e, "Last Volume:", orNone(m.LastVolume), true)
			addField(e, "Last Chapter:", orNone(m.LastChapter), true)
		}
	}
	e.Footer = &discordgo.MessageEmbedFooter{Text: m.ID}

	if cover := m.CoverURL(); cover != "" && showCover(m, nsfwAllowed) {
		e.Image = &discordgo.MessageEmbedImage{URL: cover}
	}

	return e
}

// Chapter describes a single chapter and links back to its series.
func Chapter(c *mangadex.Chapter, nsfwAllowed bool) *discordgo.MessageEmbed {
	parent := c.Manga
	if parent == nil {
		parent = &mangadex.Manga{}
	}

	title := parent.Title
	if c.Title != "" {
		title += " - " + c.Title
	}
	if c.Number != "" {
		title += fmt.Sprintf(" [Chapter %s]", c.Number)
	}

	e := &discordgo.MessageEmbed{
		Title:  title,
		URL:    c.URL(),
		Color:  colorRed,
		Footer: &discordgo.MessageEmbedFooter{Text: c.ID},
	}
	if !c.CreatedAt.IsZero() {
		e.Timestamp = c.CreatedAt.UTC().Format(time.RFC3339)
	}

	addField(e, "Manga link is:", fmt.Sprintf("[here!](%s)", parent.URL()), false)
	addField(e, "Number of pages:", strconv.Itoa(c.Pages), false)
	if len(c.ScanlatorGroups) > 0 {
		addField(e, "Scanlator groups:", strings.Join(c.ScanlatorGroups, "\n"), false)
	}
	if c.Uploader != "" {
		addField(e, "Uploader:", c.Uploader, false)
	}

	if cover := parent.CoverURL(); cover != "" && showCover(parent, nsfwAllowed) {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: cover}
	}

	return e
}

func showCover(m *mangadex.Manga, nsfwAllowed bool) bool {
	return nsfwAllowed || m.ContentRating == mangadex.RatingSafe
}

func addField(e *discordgo.MessageEmbed, name, value string, inline bool) {
	e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline})
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// titleCase upper-cases the first letter of every word ("on_hold" style
// values keep their underscores).
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// Shorten collapses whitespace and, when the text is still wider than width
// characters, drops whole words from the end and appends " [...]".
func Shorten(text string, width int) string {
	words := strings.Fields(text)
	collapsed := strings.Join(words, " ")
	if len([]rune(collapsed)) <= width {
		return collapsed
	}

	budget := width - len([]rune(shortenMarker))
	var b strings.Builder
	used := 0
	for _, w := range words {
		n := len([]rune(w))
		if used > 0 {
			n++
		}
		if used+n > budget {
			break
		}
		if used > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
		used += n
	}
	if used == 0 {
		return strings.TrimSpace(shortenMarker)
	}
	return b.String() + shortenMarker
}
