package paginator

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MessageLimit is the longest message Discord accepts, in characters.
const MessageLimit = 2000

// textPageHeadroom is kept free on every text page for the page counter.
const textPageHeadroom = 200

// LinePaginator packs lines into pages no longer than MaxSize characters,
// each wrapped in Prefix and Suffix on their own lines.
type LinePaginator struct {
	Prefix  string
	Suffix  string
	MaxSize int

	pages   []string
	current []string
	count   int
}

func NewLinePaginator(prefix, suffix string, maxSize int) *LinePaginator {
	p := &LinePaginator{Prefix: prefix, Suffix: suffix, MaxSize: maxSize}
	p.reset()
	return p
}

func (p *LinePaginator) reset() {
	p.current = nil
	p.count = 0
	if p.Prefix != "" {
		p.current = []string{p.Prefix}
		p.count = utf8.RuneCountInString(p.Prefix) + 1
	}
}

// maxLine is the longest line that fits on an otherwise empty page.
func (p *LinePaginator) maxLine() int {
	return p.MaxSize - utf8.RuneCountInString(p.Prefix) - utf8.RuneCountInString(p.Suffix) - 2
}

// AddLine appends a line, starting a new page when it would not fit. Lines
// longer than a page are hard wrapped.
func (p *LinePaginator) AddLine(line string) {
	limit := p.maxLine()
	if limit < 1 {
		limit = 1
	}

	runes := []rune(line)
	for len(runes) > limit {
		p.addFitting(string(runes[:limit]))
		runes = runes[limit:]
	}
	p.addFitting(string(runes))
}

func (p *LinePaginator) addFitting(line string) {
	n := utf8.RuneCountInString(line)
	if p.count+n+1 > p.MaxSize-utf8.RuneCountInString(p.Suffix) {
		p.closePage()
	}
	p.count += n + 1
	p.current = append(p.current, line)
}

func (p *LinePaginator) closePage() {
	if p.Suffix != "" {
		p.current = append(p.current, p.Suffix)
	}
	p.pages = append(p.pages, strings.Join(p.current, "\n"))
	p.reset()
}

// Pages closes the page in progress and returns every page.
func (p *LinePaginator) Pages() []string {
	base := 0
	if p.Prefix != "" {
		base = 1
	}
	if len(p.current) > base {
		p.closePage()
	}
	return p.pages
}

// TextPageSource pages through long text wrapped in a code block.
type TextPageSource struct {
	*ListPageSource[string]
}

// NewTextPageSource splits text by line into pages of at most maxSize
// characters, leaving room for the page counter. Zero maxSize means
// MessageLimit.
func NewTextPageSource(text, prefix, suffix string, maxSize int) *TextPageSource {
	if maxSize <= 0 {
		maxSize = MessageLimit
	}
	lp := NewLinePaginator(prefix, suffix, maxSize-textPageHeadroom)
	for _, line := range strings.Split(text, "\n") {
		lp.AddLine(line)
	}
	return &TextPageSource{ListPageSource: NewListPageSource(lp.Pages(), 1)}
}

// NewCodeBlockSource is NewTextPageSource with a ``` fence.
func NewCodeBlockSource(text string) *TextPageSource {
	return NewTextPageSource(text, "```", "```", MessageLimit)
}

func (s *TextPageSource) FormatPage(m Menu, page any) (Render, error) {
	content, ok := page.(string)
	if !ok {
		return Render{}, fmt.Errorf("text page: unexpected payload %T", page)
	}
	if maxPages, _ := s.MaxPages(); maxPages > 1 {
		content = fmt.Sprintf("%s\nPage %d/%d", content, m.CurrentPage()+1, maxPages)
	}
	return Text(content), nil
}
