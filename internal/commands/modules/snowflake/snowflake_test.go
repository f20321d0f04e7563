package snowflake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeEmbed(t *testing.T) {
	// Discord's documentation example: 2016-04-30 11:18:25.796 UTC.
	e := snowflakeEmbed(" 175928847299117063 ")
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "❄️ 175928847299117063", e.Title)
	assert.Equal(t, "<t:1462015105:R> (<t:1462015105:F>)", e.Fields[0].Value)
	assert.Equal(t, "2016-04-30 11:18:25.796", e.Fields[1].Value)
}

func TestSnowflakeEmbedRejectsText(t *testing.T) {
	e := snowflakeEmbed("hello")
	assert.Equal(t, "❌ Not a Discord ID", e.Title)
	assert.Equal(t, `id argument expected a Discord ID not "hello"`, e.Description)
}
