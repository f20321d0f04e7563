package timeparse

import (
	"context"
	"net/http"
	"time"
	"unicode"

	"palbot/internal/duckling"

	"github.com/markusmobius/go-dateparser"
)

// Parser backends selectable through the time_parser config key.
const (
	BackendDuckling   = "duckling"
	BackendDateparser = "dateparser"
)

// NewParser builds the configured backend. It returns nil when Duckling is
// selected but no endpoint is configured, which callers surface as
// UpstreamUnavailable.
func NewParser(backend, ducklingURL string, httpClient *http.Client) Parser {
	switch backend {
	case BackendDateparser:
		return NewDateparserParser()
	default:
		if ducklingURL == "" {
			return nil
		}
		return NewDucklingParser(duckling.NewWithEndpoint(ducklingURL, httpClient))
	}
}

// DucklingParser resolves time phrases through a Duckling server.
type DucklingParser struct {
	client *duckling.Client
}

func NewDucklingParser(client *duckling.Client) *DucklingParser {
	return &DucklingParser{client: client}
}

func (p *DucklingParser) Parse(ctx context.Context, text string, now time.Time, loc *time.Location) ([]Candidate, error) {
	entities, err := p.client.Parse(ctx, text, loc, duckling.DimTime, duckling.DimDuration)
	if err != nil {
		return nil, err
	}
	return candidatesFromEntities(entities, now), nil
}

func candidatesFromEntities(entities []duckling.Entity, now time.Time) []Candidate {
	candidates := make([]Candidate, 0, len(entities))
	for _, e := range entities {
		switch e.Dim {
		case duckling.DimTime:
			if e.Value.Value == "" {
				// Intervals ("from 3 to 5pm") have no single instant.
				continue
			}
			when, err := time.Parse(time.RFC3339, e.Value.Value)
			if err != nil {
				continue
			}
			candidates = append(candidates, Candidate{When: when, Start: e.Start, End: e.End, Dim: e.Dim})
		case duckling.DimDuration:
			if e.Value.Normalized == nil {
				continue
			}
			offset := time.Duration(e.Value.Normalized.Value * float64(time.Second))
			candidates = append(candidates, Candidate{When: now.Add(offset), Start: e.Start, End: e.End, Dim: e.Dim})
		}
	}
	return candidates
}

// DateparserParser is an offline backend built on go-dateparser. It looks
// for the longest run of leading or trailing words that parses as a date.
type DateparserParser struct {
	languages []string
}

func NewDateparserParser() *DateparserParser {
	return &DateparserParser{languages: []string{"en"}}
}

type word struct {
	start, end int // rune offsets
}

func (p *DateparserParser) Parse(_ context.Context, text string, now time.Time, loc *time.Location) ([]Candidate, error) {
	if loc == nil {
		loc = time.UTC
	}
	cfg := &dateparser.Configuration{
		Languages:       p.languages,
		CurrentTime:     now.In(loc),
		DefaultTimezone: loc,
	}

	runes := []rune(text)
	words := splitWords(runes)
	if len(words) == 0 {
		return nil, nil
	}

	try := func(first, last int) (Candidate, bool) {
		start, end := words[first].start, words[last].end
		dt, err := dateparser.Parse(cfg, string(runes[start:end]))
		if err != nil || dt.Time.IsZero() {
			return Candidate{}, false
		}
		return Candidate{When: dt.Time, Start: start, End: end, Dim: duckling.DimTime}, true
	}

	// Longest phrase first, suffixes before prefixes at equal length.
	for n := len(words); n > 0; n-- {
		if c, ok := try(len(words)-n, len(words)-1); ok {
			return []Candidate{c}, nil
		}
		if n == len(words) {
			continue
		}
		if c, ok := try(0, n-1); ok {
			return []Candidate{c}, nil
		}
	}

	return nil, nil
}

func splitWords(runes []rune) []word {
	var words []word
	start := -1
	for i, r := range runes {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, word{start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, word{start: start, end: len(runes)})
	}
	return words
}
