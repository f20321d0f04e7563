package timeparse

import (
	"context"
	"strings"
	"time"

	"palbot/internal/usererr"
)

// Placeholder stands in for a reminder label when nothing but the time
// phrase was given.
const Placeholder = "…"

var (
	fillerPrefixes = []string{"me to ", "me in ", "me at ", "me that "}
	fillerSuffixes = []string{"from now"}
	labelPrefixes  = []string{"to "}
)

// residualCutset is stripped from the front of the text following a leading
// time phrase ("tomorrow, buy milk" -> "buy milk").
const residualCutset = " ,.!:;"

// Candidate is one interpretation of a time phrase found in a query. Start
// and End are rune offsets into the queried text.
type Candidate struct {
	When  time.Time
	Start int
	End   int
	Dim   string
}

// SplitResult is a resolved point in time plus what the user wants at it.
type SplitResult struct {
	When time.Time
	What string
}

// Parser finds time phrases in text, resolving relative phrases against now
// in loc.
type Parser interface {
	Parse(ctx context.Context, text string, now time.Time, loc *time.Location) ([]Candidate, error)
}

// TimezoneLookup resolves a user's preferred zone. Unknown users get UTC.
type TimezoneLookup interface {
	UserTimezone(ctx context.Context, userID string) (*time.Location, error)
}

// Splitter turns free text into a (when, what) pair.
type Splitter struct {
	parser    Parser
	timezones TimezoneLookup

	// StrictCandidates rejects queries the parser reads more than one way
	// instead of taking the first interpretation.
	StrictCandidates bool
}

// NewSplitter creates a Splitter. A nil parser makes every operation fail
// with UpstreamUnavailable; a nil lookup treats everyone as UTC.
func NewSplitter(parser Parser, timezones TimezoneLookup) *Splitter {
	return &Splitter{parser: parser, timezones: timezones}
}

// StripFiller removes the conversational padding people put around a
// reminder ("me to ...", "... from now"). Stripping repeats until nothing
// changes, so applying it twice is the same as applying it once.
func StripFiller(text string) string {
	for {
		stripped := stripFillerOnce(text)
		if stripped == text {
			return text
		}
		text = stripped
	}
}

func stripFillerOnce(text string) string {
	for _, prefix := range fillerPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = text[len(prefix):]
			break
		}
	}
	for _, suffix := range fillerSuffixes {
		text = strings.TrimSuffix(text, suffix)
	}
	return strings.TrimSpace(text)
}

// Split finds the time phrase in text and returns the instant it names plus
// the remaining text as a label.
func (s *Splitter) Split(ctx context.Context, text string, now time.Time, loc *time.Location) (SplitResult, error) {
	text = StripFiller(text)

	candidate, err := s.first(ctx, text, now, loc)
	if err != nil {
		return SplitResult{}, err
	}

	what, err := Residual(text, candidate.Start, candidate.End)
	if err != nil {
		return SplitResult{}, err
	}

	return SplitResult{When: candidate.When, What: what}, nil
}

// Datetime resolves the whole of text to a single instant.
func (s *Splitter) Datetime(ctx context.Context, text string, now time.Time, loc *time.Location) (time.Time, error) {
	candidate, err := s.first(ctx, text, now, loc)
	if err != nil {
		return time.Time{}, err
	}
	return candidate.When, nil
}

// SplitForUser is Split in the user's stored time zone.
func (s *Splitter) SplitForUser(ctx context.Context, userID, text string, now time.Time) (SplitResult, error) {
	loc, err := s.Timezone(ctx, userID)
	if err != nil {
		return SplitResult{}, err
	}
	return s.Split(ctx, text, now.In(loc), loc)
}

// DatetimeForUser is Datetime in the user's stored time zone.
func (s *Splitter) DatetimeForUser(ctx context.Context, userID, text string, now time.Time) (time.Time, error) {
	loc, err := s.Timezone(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	return s.Datetime(ctx, text, now.In(loc), loc)
}

// Timezone returns the user's zone, falling back to UTC.
func (s *Splitter) Timezone(ctx context.Context, userID string) (*time.Location, error) {
	if s.timezones == nil {
		return time.UTC, nil
	}
	loc, err := s.timezones.UserTimezone(ctx, userID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return time.UTC, nil
	}
	return loc, nil
}

func (s *Splitter) first(ctx context.Context, text string, now time.Time, loc *time.Location) (Candidate, error) {
	if s.parser == nil {
		return Candidate{}, usererr.New(usererr.UpstreamUnavailable, "No time parsing service available to perform this action.")
	}
	if loc == nil {
		loc = time.UTC
	}

	candidates, err := s.parser.Parse(ctx, text, now, loc)
	if err != nil {
		return Candidate{}, err
	}

	switch {
	case len(candidates) == 0:
		return Candidate{}, usererr.New(usererr.ParseFailure, "Could not parse time.")
	case len(candidates) > 1 && s.StrictCandidates:
		return Candidate{}, usererr.New(usererr.AmbiguousPhrase, "That could mean more than one time, try being more specific.")
	}

	return candidates[0], nil
}

// Residual cuts the time phrase at [start, end) out of text and returns what
// is left. The phrase has to open or close the text; anything else is
// ambiguous.
func Residual(text string, start, end int) (string, error) {
	runes := []rune(text)
	if start < 0 || end < start || end > len(runes) {
		return "", usererr.New(usererr.ParseFailure, "Could not parse time.")
	}

	var what string
	switch {
	case start == 0:
		// The character right after the phrase is its separator.
		if end+1 < len(runes) {
			what = strings.TrimLeft(string(runes[end+1:]), residualCutset)
		}
	case end == len(runes):
		what = strings.TrimSpace(string(runes[:start]))
	default:
		return "", usererr.New(usererr.AmbiguousPhrase, "Could not distinguish time from argument.")
	}

	for _, prefix := range labelPrefixes {
		what = strings.TrimPrefix(what, prefix)
	}

	if what == "" {
		return Placeholder, nil
	}
	return what, nil
}
