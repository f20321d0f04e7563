package utils

import (
	"palbot/internal/usererr"

	"github.com/bwmarrin/discordgo"
)

var standardEmbedFooter = &discordgo.MessageEmbedFooter{
	Text: "Run /help for more options",
}

// NewEmbed creates a new embed with the standard footer and neutral color
func NewEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:  Colors.Ok(),
		Footer: standardEmbedFooter,
	}
}

// NewOKEmbed creates a success embed with the given title and description
func NewOKEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       Colors.Ok(),
		Footer:      standardEmbedFooter,
	}
}

// NewErrorEmbed creates a new error embed with the given title and description
func NewErrorEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "❌ " + title,
		Description: description,
		Color:       Colors.Error(),
		Footer:      standardEmbedFooter,
	}
}

// NewUserErrorEmbed creates an error embed whose description is safe to show
// to users: the message of a usererr.Error, or a generic apology otherwise.
func NewUserErrorEmbed(title string, err error) *discordgo.MessageEmbed {
	return NewErrorEmbed(title, usererr.Message(err))
}

// NewNoResultsEmbed creates an informational embed for empty searches.
func NewNoResultsEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🔍 No Results",
		Description: description,
		Color:       Colors.Warning(),
		Footer:      standardEmbedFooter,
	}
}

// StringPtr returns a pointer to s, for optional discordgo fields.
func StringPtr(s string) *string {
	return &s
}

// Float64Ptr returns a pointer to f, for option bounds.
func Float64Ptr(f float64) *float64 {
	return &f
}
