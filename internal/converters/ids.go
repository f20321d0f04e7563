package converters

import (
	"fmt"
	"regexp"
	"strings"

	"palbot/internal/usererr"

	"github.com/disgoorg/snowflake/v2"
)

var mystbinPattern = regexp.MustCompile(`(?:(?:https?://)?(?:beta\.)?(?:mystb\.in/))?(?P<id>(?:[A-Z][a-z]+)*)(?P<ext>\.\w+)?`)

// MystbinPasteID extracts a paste ID ("BrightOrangeCat") from a bare ID or a
// mystb.in link.
func MystbinPasteID(text string) (string, error) {
	for _, m := range mystbinPattern.FindAllStringSubmatch(text, -1) {
		if id := m[mystbinPattern.SubexpIndex("id")]; id != "" {
			return id, nil
		}
	}
	return "", usererr.New(usererr.InvalidInput, "No Mystbin IDs found in this text.")
}

// ParseSnowflake reads a Discord ID typed as text. Slash commands have no
// 64-bit integer option, so IDs arrive as strings. param names the option in
// the error and may be empty.
func ParseSnowflake(param, text string) (snowflake.ID, error) {
	id, err := snowflake.Parse(strings.TrimSpace(text))
	if err != nil {
		msg := fmt.Sprintf("expected a Discord ID not %q", text)
		if param != "" {
			msg = fmt.Sprintf("%s argument %s", param, msg)
		}
		return 0, usererr.Wrap(usererr.InvalidInput, msg, err)
	}
	return id, nil
}
