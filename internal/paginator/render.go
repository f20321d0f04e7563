package paginator

import "github.com/bwmarrin/discordgo"

// Render is what a page looks like on screen. Content and Embeds replace the
// message's current ones, so an embed-only render clears old content.
type Render struct {
	Content string
	Embeds  []*discordgo.MessageEmbed
}

// Text renders a plain text page.
func Text(content string) Render {
	return Render{Content: content}
}

// Embed renders a single embed page.
func Embed(e *discordgo.MessageEmbed) Render {
	if e == nil {
		return Render{}
	}
	return Render{Embeds: []*discordgo.MessageEmbed{e}}
}

// IsZero reports whether there is nothing to draw. Zero renders leave the
// live message untouched.
func (r Render) IsZero() bool {
	return r.Content == "" && len(r.Embeds) == 0
}

// Message is a render plus the controls attached to it.
type Message struct {
	Render
	Controls []Control
}
