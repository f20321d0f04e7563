package mangadex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"palbot/internal/usererr"
)

const (
	DefaultBaseURL = "https://api.mangadex.org"
	siteURL        = "https://mangadex.org"
	uploadsURL     = "https://uploads.mangadex.org"
)

// ContentRating values as returned by the API.
const (
	RatingSafe       = "safe"
	RatingSuggestive = "suggestive"
	RatingErotica    = "erotica"
	RatingPorn       = "pornographic"
)

// StatusCompleted is the publication status of a finished series.
const StatusCompleted = "completed"

// Manga is the subset of a MangaDex manga the bot displays.
type Manga struct {
	ID            string
	Title         string
	Description   string
	Tags          []string
	Demographic   string
	ContentRating string
	Status        string
	LastVolume    string
	LastChapter   string
	Authors       []string
	Artists       []string
	CoverFile     string
}

// URL is the manga's page on the MangaDex site.
func (m *Manga) URL() string {
	return siteURL + "/title/" + m.ID
}

// CoverURL returns the cover image URL, or "" when the manga has no cover.
func (m *Manga) CoverURL() string {
	if m.CoverFile == "" {
		return ""
	}
	return fmt.Sprintf("%s/covers/%s/%s", uploadsURL, m.ID, m.CoverFile)
}

// Chapter is the subset of a MangaDex chapter the bot displays.
type Chapter struct {
	ID              string
	Title           string
	Number          string
	Pages           int
	CreatedAt       time.Time
	ScanlatorGroups []string
	Uploader        string
	Manga           *Manga
}

// URL is the chapter's reader page.
func (c *Chapter) URL() string {
	return siteURL + "/chapter/" + c.ID
}

// Client talks to the MangaDex REST API.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// New creates a client. An empty baseURL uses the public API.
func New(baseURL, userAgent string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: hc, userAgent: userAgent}
}

// SearchManga finds manga by title, best match first.
func (c *Client) SearchManga(ctx context.Context, title string, limit int) ([]*Manga, error) {
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("title", title)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("order[relevance]", "desc")
	q.Add("includes[]", "cover_art")
	q.Add("includes[]", "author")
	q.Add("includes[]", "artist")

	var resp collectionResponse
	if err := c.get(ctx, "/manga", q, &resp); err != nil {
		return nil, err
	}

	out := make([]*Manga, 0, len(resp.Data))
	for _, e := range resp.Data {
		out = append(out, e.manga())
	}
	return out, nil
}

// Manga fetches a single manga by ID.
func (c *Client) Manga(ctx context.Context, id string) (*Manga, error) {
	q := url.Values{}
	q.Add("includes[]", "cover_art")
	q.Add("includes[]", "author")
	q.Add("includes[]", "artist")

	var resp entityResponse
	if err := c.get(ctx, "/manga/"+url.PathEscape(id), q, &resp); err != nil {
		return nil, err
	}
	return resp.Data.manga(), nil
}

// Chapter fetches a chapter by ID together with its manga and cover.
func (c *Client) Chapter(ctx context.Context, id string) (*Chapter, error) {
	q := url.Values{}
	q.Add("includes[]", "scanlation_group")
	q.Add("includes[]", "user")
	q.Add("includes[]", "manga")

	var resp entityResponse
	if err := c.get(ctx, "/chapter/"+url.PathEscape(id), q, &resp); err != nil {
		return nil, err
	}
	ch := resp.Data.chapter()

	mangaID := ""
	for _, rel := range resp.Data.Relationships {
		if rel.Type == "manga" {
			mangaID = rel.ID
			break
		}
	}
	if mangaID == "" {
		return nil, usererr.New(usererr.UpstreamFailure, "MangaDex returned a chapter without a manga.")
	}

	// The chapter only embeds the manga's attributes; the cover needs its own request.
	parent, err := c.Manga(ctx, mangaID)
	if err != nil {
		return nil, err
	}
	ch.Manga = parent

	return ch, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build mangadex request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return usererr.Wrap(usererr.UpstreamFailure, "Could not reach MangaDex.", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return usererr.New(usererr.InvalidInput, "Nothing on MangaDex has that ID.")
	case resp.StatusCode == http.StatusBadRequest:
		return usererr.New(usererr.InvalidInput, "MangaDex did not accept that request.")
	case resp.StatusCode != http.StatusOK:
		return usererr.New(usererr.UpstreamFailure, fmt.Sprintf("MangaDex failed with %d.", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return usererr.Wrap(usererr.UpstreamFailure, "MangaDex sent a response that could not be read.", err)
	}
	return nil
}

// localized is a language-code keyed string map.
type localized map[string]string

// pick prefers English, then the alphabetically first language.
func (l localized) pick() string {
	if v, ok := l["en"]; ok {
		return v
	}
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return l[keys[0]]
}

type relationship struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes json.RawMessage `json:"attributes"`
}

type entity struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Attributes    json.RawMessage `json:"attributes"`
	Relationships []relationship  `json:"relationships"`
}

type entityResponse struct {
	Result string `json:"result"`
	Data   entity `json:"data"`
}

type collectionResponse struct {
	Result string   `json:"result"`
	Data   []entity `json:"data"`
	Total  int      `json:"total"`
}

type mangaAttributes struct {
	Title                  localized `json:"title"`
	Description            localized `json:"description"`
	PublicationDemographic *string   `json:"publicationDemographic"`
	ContentRating          string    `json:"contentRating"`
	Status                 string    `json:"status"`
	LastVolume             *string   `json:"lastVolume"`
	LastChapter            *string   `json:"lastChapter"`
	Tags                   []struct {
		Attributes struct {
			Name localized `json:"name"`
		} `json:"attributes"`
	} `json:"tags"`
}

type chapterAttributes struct {
	Title     *string   `json:"title"`
	Chapter   *string   `json:"chapter"`
	Pages     int       `json:"pages"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e entity) manga() *Manga {
	var attrs mangaAttributes
	_ = json.Unmarshal(e.Attributes, &attrs)

	m := &Manga{
		ID:            e.ID,
		Title:         attrs.Title.pick(),
		Description:   attrs.Description.pick(),
		ContentRating: attrs.ContentRating,
		Status:        attrs.Status,
		Demographic:   deref(attrs.PublicationDemographic),
		LastVolume:    deref(attrs.LastVolume),
		LastChapter:   deref(attrs.LastChapter),
	}
	for _, tag := range attrs.Tags {
		if name := tag.Attributes.Name.pick(); name != "" {
			m.Tags = append(m.Tags, name)
		}
	}

	for _, rel := range e.Relationships {
		switch rel.Type {
		case "cover_art":
			var cover struct {
				FileName string `json:"fileName"`
			}
			if err := unmarshalAttributes(rel, &cover); err == nil {
				m.CoverFile = cover.FileName
			}
		case "author", "artist":
			var person struct {
				Name string `json:"name"`
			}
			if err := unmarshalAttributes(rel, &person); err != nil || person.Name == "" {
				continue
			}
			if rel.Type == "author" {
				m.Authors = append(m.Authors, person.Name)
			} else {
				m.Artists = append(m.Artists, person.Name)
			}
		}
	}

	return m
}

func (e entity) chapter() *Chapter {
	var attrs chapterAttributes
	_ = json.Unmarshal(e.Attributes, &attrs)

	ch := &Chapter{
		ID:        e.ID,
		Title:     deref(attrs.Title),
		Number:    deref(attrs.Chapter),
		Pages:     attrs.Pages,
		CreatedAt: attrs.CreatedAt,
	}

	for _, rel := range e.Relationships {
		switch rel.Type {
		case "scanlation_group":
			var group struct {
				Name string `json:"name"`
			}
			if err := unmarshalAttributes(rel, &group); err == nil && group.Name != "" {
				ch.ScanlatorGroups = append(ch.ScanlatorGroups, group.Name)
			}
		case "user":
			var user struct {
				Username string `json:"username"`
			}
			if err := unmarshalAttributes(rel, &user); err == nil {
				ch.Uploader = user.Username
			}
		}
	}

	return ch
}

var errNoAttributes = errors.New("relationship not expanded")

func unmarshalAttributes(rel relationship, out any) error {
	if len(rel.Attributes) == 0 || string(rel.Attributes) == "null" {
		return errNoAttributes
	}
	return json.Unmarshal(rel.Attributes, out)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
