package paginator

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type menuAt int

func (m menuAt) CurrentPage() int { return int(m) }

func TestControlsLayout(t *testing.T) {
	actions := func(cs []Control) []Action {
		var out []Action
		for _, c := range cs {
			out = append(out, c.Action)
		}
		return out
	}

	full := newControlSet().layout(pagesOf(3), false)
	assert.Equal(t, []Action{ActionFirst, ActionPrevious, ActionCurrent, ActionNext, ActionLast, ActionJump, ActionStop}, actions(full))
	assert.Equal(t, 0, full[4].Row)
	assert.Equal(t, 1, full[5].Row)
	assert.Equal(t, 1, full[6].Row)

	compact := newControlSet().layout(pagesOf(3), true)
	assert.Equal(t, []Action{ActionFirst, ActionPrevious, ActionNext, ActionLast, ActionStop}, actions(compact))
	assert.Equal(t, 0, compact[4].Row)

	unknown := newControlSet().layout(unknownLengthSource{pagesOf(3)}, false)
	assert.Equal(t, []Action{ActionPrevious, ActionCurrent, ActionNext, ActionJump, ActionStop}, actions(unknown))

	assert.Nil(t, newControlSet().layout(pagesOf(1), false))
}

func TestControlLabelsFullMode(t *testing.T) {
	source := pagesOf(3)
	cs := newControlSet()

	cs.update(0, source, false)
	assert.Equal(t, "…", cs.previous.Label)
	assert.True(t, cs.previous.Disabled)
	assert.Equal(t, "1", cs.current.Label)
	assert.Equal(t, "2", cs.next.Label)
	assert.False(t, cs.next.Disabled)
	assert.False(t, cs.first.Disabled)
	assert.False(t, cs.last.Disabled)

	cs.update(1, source, false)
	assert.Equal(t, "1", cs.previous.Label)
	assert.False(t, cs.previous.Disabled)
	assert.Equal(t, "2", cs.current.Label)
	assert.Equal(t, "3", cs.next.Label)

	cs.update(2, source, false)
	assert.Equal(t, "…", cs.next.Label)
	assert.True(t, cs.next.Disabled)
	assert.True(t, cs.last.Disabled)
	assert.Equal(t, "2", cs.previous.Label)
}

func TestControlLabelsCompactMode(t *testing.T) {
	source := pagesOf(3)
	cs := newControlSet()

	cs.update(0, source, true)
	assert.True(t, cs.first.Disabled)
	assert.True(t, cs.previous.Disabled)
	assert.False(t, cs.next.Disabled)
	assert.False(t, cs.last.Disabled)
	assert.Equal(t, "Back", cs.previous.Label)
	assert.Equal(t, "Next", cs.next.Label)

	cs.update(2, source, true)
	assert.False(t, cs.first.Disabled)
	assert.True(t, cs.next.Disabled)
	assert.True(t, cs.last.Disabled)

	cs.update(1, unknownLengthSource{source}, true)
	assert.True(t, cs.last.Disabled, "no last page without a page count")
	assert.False(t, cs.next.Disabled)
}

func TestListPageSource(t *testing.T) {
	s := NewListPageSource([]int{1, 2, 3, 4, 5}, 2)
	maxPages, known := s.MaxPages()
	assert.True(t, known)
	assert.Equal(t, 3, maxPages)
	assert.True(t, s.IsPaginating())

	page, err := s.Page(2)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, page)

	_, err = s.Page(3)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = s.Page(-1)
	assert.ErrorIs(t, err, ErrPageOutOfRange)

	single := NewListPageSource([]string{"a", "b"}, 1)
	page, err = single.Page(1)
	require.NoError(t, err)
	assert.Equal(t, "b", page)

	empty := NewListPageSource([]string{}, 5)
	assert.False(t, empty.IsPaginating())
	page, err = empty.Page(0)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestFieldPageSource(t *testing.T) {
	fields := make([]Field, 30)
	for i := range fields {
		fields[i] = Field{Name: fmt.Sprintf("n%d", i), Value: fmt.Sprintf("v%d", i)}
	}
	s := NewFieldPageSource(fields)
	s.Embed.Title = "Commands"
	s.Embed.Description = "stale"
	s.Inline = true

	page, err := s.Page(2)
	require.NoError(t, err)
	r, err := s.FormatPage(menuAt(2), page)
	require.NoError(t, err)

	require.Len(t, r.Embeds, 1)
	e := r.Embeds[0]
	assert.Equal(t, "Commands", e.Title)
	assert.Empty(t, e.Description)
	require.Len(t, e.Fields, 6)
	assert.Equal(t, "n24", e.Fields[0].Name)
	assert.True(t, e.Fields[0].Inline)
	assert.Equal(t, "Page 3/3 (30 entries)", e.Footer.Text)
	assert.Equal(t, ColorBlurple, e.Color)
	assert.Equal(t, "stale", s.Embed.Description, "the template is not modified")
}

func TestFieldPageSourceSinglePageHasNoFooter(t *testing.T) {
	s := NewFieldPageSource([]Field{{Name: "a", Value: "b"}})
	page, err := s.Page(0)
	require.NoError(t, err)
	r, err := s.FormatPage(menuAt(0), page)
	require.NoError(t, err)
	assert.Nil(t, r.Embeds[0].Footer)
}

func TestSimplePageSource(t *testing.T) {
	entries := []string{"a", "b", "c", "d", "e"}
	s := NewSimplePageSource(entries, 2)

	page, err := s.Page(1)
	require.NoError(t, err)
	r, err := s.FormatPage(menuAt(1), page)
	require.NoError(t, err)

	e := r.Embeds[0]
	assert.Equal(t, "3. c\n4. d", e.Description)
	assert.Equal(t, "Page 2/3 (5 entries)", e.Footer.Text)
}

func TestEmbedListSource(t *testing.T) {
	embeds := []*discordgo.MessageEmbed{{Title: "one"}, {Title: "two"}}
	s := NewEmbedListSource(embeds)

	page, err := s.Page(1)
	require.NoError(t, err)
	r, err := s.FormatPage(menuAt(1), page)
	require.NoError(t, err)
	assert.Same(t, embeds[1], r.Embeds[0])
}

func TestTextPageSource(t *testing.T) {
	lines := make([]string, 400)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %03d", i)
	}
	s := NewCodeBlockSource(strings.Join(lines, "\n"))

	maxPages, _ := s.MaxPages()
	require.Greater(t, maxPages, 1)

	var got []string
	for i := 0; i < maxPages; i++ {
		page, err := s.Page(i)
		require.NoError(t, err)
		text := page.(string)

		assert.LessOrEqual(t, utf8.RuneCountInString(text), MessageLimit-textPageHeadroom)
		require.True(t, strings.HasPrefix(text, "```\n"))
		require.True(t, strings.HasSuffix(text, "\n```"))
		got = append(got, strings.Split(strings.TrimSuffix(strings.TrimPrefix(text, "```\n"), "\n```"), "\n")...)
	}
	assert.Equal(t, lines, got)

	page, err := s.Page(0)
	require.NoError(t, err)
	r, err := s.FormatPage(menuAt(0), page)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(r.Content, fmt.Sprintf("\nPage 1/%d", maxPages)))
}

func TestTextPageSourceWrapsLongLines(t *testing.T) {
	long := strings.Repeat("é", 4000)
	s := NewTextPageSource(long, "", "", 1000)

	maxPages, _ := s.MaxPages()
	require.Greater(t, maxPages, 1)

	var total int
	for i := 0; i < maxPages; i++ {
		page, err := s.Page(i)
		require.NoError(t, err)
		n := utf8.RuneCountInString(page.(string))
		assert.LessOrEqual(t, n, 800)
		total += n
	}
	assert.Equal(t, 4000, total)
}

func TestTextPageSourceSinglePage(t *testing.T) {
	s := NewCodeBlockSource("hello")
	assert.False(t, s.IsPaginating())

	page, err := s.Page(0)
	require.NoError(t, err)
	r, err := s.FormatPage(menuAt(0), page)
	require.NoError(t, err)
	assert.Equal(t, "```\nhello\n```", r.Content)
}
