package converters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"palbot/internal/usererr"
)

const (
	redditShortVideoHost = "v.redd.it"
	redditHostSuffix     = ".reddit.com"

	// DefaultRedditUserAgent follows Reddit's "platform:app:version (by /u/...)" convention.
	DefaultRedditUserAgent = "Discord:palbot:v1.0 (by /u/palbot-maintainers)"
)

var redditSubmissionPath = regexp.MustCompile(`^/r/[A-Za-z0-9_]+/comments/[A-Za-z0-9]+(?:/.+)?`)

// RedditMedia is the directly downloadable video behind a Reddit submission.
type RedditMedia struct {
	URL      *url.URL
	Filename string
}

// RedditResolver turns Reddit submission links into their video fallback URL.
type RedditResolver struct {
	client    *http.Client
	userAgent string
}

// NewRedditResolver creates a resolver. An empty userAgent uses the default.
func NewRedditResolver(client *http.Client, userAgent string) *RedditResolver {
	if client == nil {
		client = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultRedditUserAgent
	}
	return &RedditResolver{client: client, userAgent: userAgent}
}

// Resolve validates raw as a Reddit submission (or v.redd.it short link) and
// digs the video fallback URL out of the submission JSON.
func (r *RedditResolver) Resolve(ctx context.Context, raw string) (*RedditMedia, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return nil, usererr.New(usererr.InvalidInput, "Not a valid URL.")
	}

	if u.Hostname() == redditShortVideoHost {
		u, err = r.followRedirect(ctx, u)
		if err != nil {
			return nil, err
		}
	}

	if u.Hostname() == "" {
		return nil, usererr.New(usererr.InvalidInput, "Not a valid v.reddit url.")
	}

	if !strings.HasSuffix(u.Hostname(), redditHostSuffix) || !redditSubmissionPath.MatchString(u.Path) {
		return nil, usererr.New(usererr.InvalidInput, "Not a reddit URL.")
	}

	submission, err := r.fetchSubmission(ctx, u)
	if err != nil {
		return nil, err
	}

	return mediaFromSubmission(submission)
}

// followRedirect asks v.redd.it where the short link points.
func (r *RedditResolver) followRedirect(ctx context.Context, u *url.URL) (*url.URL, error) {
	req, err := r.newRequest(ctx, u.String())
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, usererr.Wrap(usererr.UpstreamFailure, "Could not reach Reddit.", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// http.Client follows redirects; the final request carries the canonical URL.
	return resp.Request.URL, nil
}

func (r *RedditResolver) fetchSubmission(ctx context.Context, u *url.URL) (map[string]any, error) {
	jsonURL := *u
	jsonURL.Path = strings.TrimSuffix(jsonURL.Path, "/") + "/.json"
	jsonURL.RawQuery = ""

	req, err := r.newRequest(ctx, jsonURL.String())
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, usererr.Wrap(usererr.UpstreamFailure, "Could not reach Reddit.", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, usererr.New(usererr.UpstreamFailure, fmt.Sprintf("Reddit API failed with %d.", resp.StatusCode))
	}

	var listing []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, usererr.Wrap(usererr.UpstreamFailure, "Could not fetch submission.", err)
	}

	if len(listing) == 0 {
		return nil, usererr.New(usererr.UpstreamFailure, "Could not fetch submission.")
	}
	children, ok := dig(listing[0], "data", "children").([]any)
	if !ok || len(children) == 0 {
		return nil, usererr.New(usererr.UpstreamFailure, "Could not fetch submission.")
	}
	submission, ok := dig(children[0], "data").(map[string]any)
	if !ok {
		return nil, usererr.New(usererr.UpstreamFailure, "Could not fetch submission.")
	}

	return submission, nil
}

func (r *RedditResolver) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, usererr.Wrap(usererr.InvalidInput, "Not a valid URL.", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	return req, nil
}

func mediaFromSubmission(submission map[string]any) (*RedditMedia, error) {
	video, ok := dig(submission, "media", "reddit_video").(map[string]any)
	if !ok {
		// Cross posts keep the media on the parent.
		parents, _ := submission["crosspost_parent_list"].([]any)
		if len(parents) > 0 {
			video, ok = dig(parents[0], "media", "reddit_video").(map[string]any)
		}
	}
	if !ok {
		return nil, usererr.New(usererr.UpstreamFailure, "Could not fetch media information.")
	}

	raw, ok := video["fallback_url"].(string)
	if !ok || raw == "" {
		return nil, usererr.New(usererr.UpstreamFailure, "Could not fetch fall back URL.")
	}
	fallback, err := url.Parse(raw)
	if err != nil {
		return nil, usererr.Wrap(usererr.UpstreamFailure, "Could not fetch fall back URL.", err)
	}

	return &RedditMedia{URL: fallback, Filename: mediaFilename(fallback)}, nil
}

// mediaFilename names the download after the video ID, the first path segment
// of a v.redd.it fallback URL.
func mediaFilename(u *url.URL) string {
	segment := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
	if segment == "" {
		segment = "video"
	}
	return segment + ".mp4"
}

// dig walks nested JSON objects by key, returning nil on any miss.
func dig(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}
