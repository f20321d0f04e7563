package duckling

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"palbot/internal/usererr"
)

const (
	DimTime     = "time"
	DimDuration = "duration"

	// Locale is the only locale the bot asks Duckling for.
	Locale = "en_US"
)

// Normalized is Duckling's normalised duration value, always in seconds.
type Normalized struct {
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

// Value holds the resolved part of a Duckling entity. Absolute times carry
// Value; durations carry Normalized. Intervals carry neither and are skipped.
type Value struct {
	Type       string      `json:"type"`
	Value      string      `json:"value,omitempty"`
	Unit       string      `json:"unit,omitempty"`
	Normalized *Normalized `json:"normalized,omitempty"`
}

// Entity is a single record of a /parse response.
type Entity struct {
	Body   string `json:"body"`
	Dim    string `json:"dim"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Latent bool   `json:"latent"`
	Value  Value  `json:"value"`
}

// Client talks to a Duckling HTTP server.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a client for a Duckling instance at host:port.
func New(host string, port int, httpClient *http.Client) *Client {
	u := url.URL{
		Scheme: "http",
		Host:   host + ":" + strconv.Itoa(port),
		Path:   "/parse",
	}
	return NewWithEndpoint(u.String(), httpClient)
}

// NewWithEndpoint creates a client posting to the given /parse URL.
func NewWithEndpoint(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

// Endpoint returns the /parse URL this client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Parse asks Duckling to recognise dims in text, interpreting relative
// phrases in loc. Entities are returned in the order Duckling sent them.
func (c *Client) Parse(ctx context.Context, text string, loc *time.Location, dims ...string) ([]Entity, error) {
	if loc == nil {
		loc = time.UTC
	}
	if len(dims) == 0 {
		dims = []string{DimTime, DimDuration}
	}

	encodedDims, err := json.Marshal(dims)
	if err != nil {
		return nil, fmt.Errorf("encoding dims: %w", err)
	}

	form := url.Values{}
	form.Set("locale", Locale)
	form.Set("text", text)
	form.Set("dims", string(encodedDims))
	form.Set("tz", loc.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building duckling request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, usererr.Wrap(usererr.UpstreamFailure, "The time parsing service could not be reached.", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, usererr.Wrap(usererr.UpstreamFailure, "The time parsing service sent an unreadable response.", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, usererr.New(usererr.UpstreamFailure, fmt.Sprintf("The time parsing service failed with %d.", resp.StatusCode))
	}

	var entities []Entity
	if err := json.Unmarshal(body, &entities); err != nil {
		return nil, usererr.Wrap(usererr.UpstreamFailure, "The time parsing service sent a malformed response.", err)
	}

	return entities, nil
}
