package paginator

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ColorBlurple is Discord's brand color, used for paginated embeds.
const ColorBlurple = 0x5865F2

// ListPageSource splits entries into fixed size pages. With one entry per
// page, Page returns the entry itself instead of a slice.
type ListPageSource[T any] struct {
	entries []T
	perPage int
}

// NewListPageSource creates a ListPageSource. perPage below 1 is treated as 1.
func NewListPageSource[T any](entries []T, perPage int) *ListPageSource[T] {
	if perPage < 1 {
		perPage = 1
	}
	return &ListPageSource[T]{entries: entries, perPage: perPage}
}

func (s *ListPageSource[T]) IsPaginating() bool {
	return len(s.entries) > s.perPage
}

func (s *ListPageSource[T]) MaxPages() (int, bool) {
	pages := len(s.entries) / s.perPage
	if len(s.entries)%s.perPage != 0 {
		pages++
	}
	return pages, true
}

// Entries returns every entry across all pages.
func (s *ListPageSource[T]) Entries() []T {
	return s.entries
}

// PageEntries returns the entries on page index.
func (s *ListPageSource[T]) PageEntries(index int) ([]T, error) {
	base := index * s.perPage
	if index < 0 || (base >= len(s.entries) && index != 0) {
		return nil, ErrPageOutOfRange
	}
	end := min(base+s.perPage, len(s.entries))
	return s.entries[base:end], nil
}

func (s *ListPageSource[T]) Page(index int) (any, error) {
	if s.perPage == 1 {
		if index < 0 || index >= len(s.entries) {
			return nil, ErrPageOutOfRange
		}
		return s.entries[index], nil
	}
	return s.PageEntries(index)
}

// footer is the "Page x/y (n entries)" line, empty for single pages.
func (s *ListPageSource[T]) footer(m Menu) string {
	maxPages, _ := s.MaxPages()
	if maxPages <= 1 {
		return ""
	}
	return fmt.Sprintf("Page %d/%d (%d entries)", m.CurrentPage()+1, maxPages, len(s.entries))
}

// Field is one name/value pair shown by FieldPageSource.
type Field struct {
	Name  string
	Value string
}

// FieldPageSource lays entries out as embed fields.
type FieldPageSource struct {
	*ListPageSource[Field]

	// Embed is copied for every page; set its title or author before
	// starting the view.
	Embed            *discordgo.MessageEmbed
	Inline           bool
	ClearDescription bool
}

// FieldsPerPage is the FieldPageSource page size.
const FieldsPerPage = 12

func NewFieldPageSource(fields []Field) *FieldPageSource {
	return &FieldPageSource{
		ListPageSource:   NewListPageSource(fields, FieldsPerPage),
		Embed:            &discordgo.MessageEmbed{Color: ColorBlurple},
		ClearDescription: true,
	}
}

func (s *FieldPageSource) FormatPage(m Menu, page any) (Render, error) {
	fields, ok := page.([]Field)
	if !ok {
		return Render{}, fmt.Errorf("field page: unexpected payload %T", page)
	}

	embed := *s.Embed
	embed.Fields = make([]*discordgo.MessageEmbedField, 0, len(fields))
	if s.ClearDescription {
		embed.Description = ""
	}
	for _, f := range fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: s.Inline})
	}
	if footer := s.footer(m); footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}

	return Embed(&embed), nil
}

// SimplePageSource shows entries as a numbered list in the embed description.
type SimplePageSource struct {
	*ListPageSource[string]

	Embed *discordgo.MessageEmbed
}

// SimplePerPage is the default SimplePageSource page size.
const SimplePerPage = 12

func NewSimplePageSource(entries []string, perPage int) *SimplePageSource {
	return &SimplePageSource{
		ListPageSource: NewListPageSource(entries, perPage),
		Embed:          &discordgo.MessageEmbed{Color: ColorBlurple},
	}
}

func (s *SimplePageSource) FormatPage(m Menu, page any) (Render, error) {
	entries, ok := page.([]string)
	if !ok {
		// One entry per page hands back the bare string.
		entry, isString := page.(string)
		if !isString {
			return Render{}, fmt.Errorf("simple page: unexpected payload %T", page)
		}
		entries = []string{entry}
	}

	start := m.CurrentPage() * s.perPage
	lines := make([]string, 0, len(entries))
	for i, entry := range entries {
		lines = append(lines, fmt.Sprintf("%d. %s", start+i+1, entry))
	}

	embed := *s.Embed
	embed.Description = strings.Join(lines, "\n")
	if footer := s.footer(m); footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}

	return Embed(&embed), nil
}

// ListSource shows one prepared entry per page, rendered by Format.
type ListSource[T any] struct {
	*ListPageSource[T]

	Format func(entry T) Render
}

func NewListSource[T any](entries []T, format func(T) Render) *ListSource[T] {
	return &ListSource[T]{ListPageSource: NewListPageSource(entries, 1), Format: format}
}

func (s *ListSource[T]) FormatPage(_ Menu, page any) (Render, error) {
	entry, ok := page.(T)
	if !ok {
		return Render{}, fmt.Errorf("list page: unexpected payload %T", page)
	}
	return s.Format(entry), nil
}

// NewEmbedListSource pages through ready-made embeds.
func NewEmbedListSource(embeds []*discordgo.MessageEmbed) *ListSource[*discordgo.MessageEmbed] {
	return NewListSource(embeds, Embed)
}
