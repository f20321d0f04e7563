package games

import (
	"fmt"
	"strings"

	"github.com/Henry-Sarabia/igdb/v2"
)

// SearchLimit caps how many games a search returns.
const SearchLimit = 10

// searchFields are loaded for every search hit so result pages can be built
// without refetching the game.
var searchFields = []string{"id", "name", "url", "summary", "websites", "multiplayer_modes", "cover", "genres", "first_release_date"}

type GameSearchResult struct {
	ExactMatch  *igdb.Game
	Suggestions []*igdb.Game
}

// Results returns the exact match, if any, followed by the suggestions.
func (r *GameSearchResult) Results() []*igdb.Game {
	if r == nil {
		return nil
	}
	results := make([]*igdb.Game, 0, len(r.Suggestions)+1)
	if r.ExactMatch != nil {
		results = append(results, r.ExactMatch)
	}
	return append(results, r.Suggestions...)
}

// ExactMatchWithSuggestions searches for a game by name and returns an exact match if found,
// along with a list of suggested games for use if an exact match is not found.
func ExactMatchWithSuggestions(igdbClient *igdb.Client, gameName string) (*GameSearchResult, error) {
	if igdbClient == nil {
		return nil, fmt.Errorf("igdb client is nil")
	}

	gameName = strings.TrimSpace(gameName)
	if gameName == "" {
		return nil, fmt.Errorf("empty game name")
	}

	searchGames, err := igdbClient.Games.Search(gameName,
		igdb.SetFields(searchFields...),
		igdb.SetLimit(SearchLimit),
	)
	if err != nil && !strings.Contains(err.Error(), "results are empty") {
		return nil, fmt.Errorf("igdb search error: %w", err)
	}

	return Rank(searchGames, gameName), nil
}

// Rank picks the best exact match for gameName out of games and keeps the
// rest, in order, as suggestions.
func Rank(games []*igdb.Game, gameName string) *GameSearchResult {
	var exact *igdb.Game
	suggestions := make([]*igdb.Game, 0, len(games))
	for _, g := range games {
		if g == nil || g.Name == "" {
			continue
		}

		// Case sensitive match - these are more important.
		if g.Name == gameName && exact == nil {
			exact = g
			continue
		}

		suggestions = append(suggestions, g)
	}

	// Case insensitive match - these are less important.
	// Use only when no case sensitive match is found.
	if exact == nil {
		for idx, g := range suggestions {
			if strings.EqualFold(g.Name, gameName) {
				exact = g
				suggestions = append(suggestions[:idx], suggestions[idx+1:]...)
				break
			}
		}
	}

	if exact == nil && len(suggestions) == 0 {
		return &GameSearchResult{ExactMatch: nil, Suggestions: nil}
	}

	return &GameSearchResult{ExactMatch: exact, Suggestions: suggestions}
}
