package utils

import (
	"fmt"
	"time"
)

// TimestampFormat is a Discord timestamp markup style.
type TimestampFormat struct {
	Name  string
	Style string
}

// TimestampFormats lists every Discord timestamp style in display order.
var TimestampFormats = []TimestampFormat{
	{"Default", ""},
	{"Short Time", "t"},
	{"Long Time", "T"},
	{"Short Date", "d"},
	{"Long Date", "D"},
	{"Short Date/Time", "f"},
	{"Long Date/Time", "F"},
	{"Relative Time", "R"},
}

// DiscordTimestamp renders t as Discord markup, e.g. <t:1700000000:R>. An
// empty style uses the client's default.
func DiscordTimestamp(t time.Time, style string) string {
	if style == "" {
		return fmt.Sprintf("<t:%d>", t.Unix())
	}
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

// RelativeAndFull renders t as "<relative> (<long date/time>)".
func RelativeAndFull(t time.Time) string {
	return fmt.Sprintf("%s (%s)", DiscordTimestamp(t, "R"), DiscordTimestamp(t, "F"))
}
