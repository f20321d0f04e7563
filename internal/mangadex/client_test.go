package mangadex

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"palbot/internal/usererr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mangaJSON = `{
  "id": "m-1",
  "type": "manga",
  "attributes": {
    "title": {"ja-ro": "Yotsuba to!", "en": "Yotsuba&!"},
    "description": {"en": "Yotsuba is a strange little girl."},
    "publicationDemographic": "shounen",
    "contentRating": "safe",
    "status": "ongoing",
    "lastVolume": null,
    "lastChapter": "",
    "tags": [{"attributes": {"name": {"en": "Comedy"}}}, {"attributes": {"name": {"en": "Slice of Life"}}}]
  },
  "relationships": [
    {"id": "c-1", "type": "cover_art", "attributes": {"fileName": "cover.jpg"}},
    {"id": "a-1", "type": "author", "attributes": {"name": "Azuma Kiyohiko"}},
    {"id": "a-1", "type": "artist", "attributes": {"name": "Azuma Kiyohiko"}},
    {"id": "x-1", "type": "creator"}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "palbot-test", srv.Client())
}

func TestSearchManga(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manga", r.URL.Path)
		assert.Equal(t, "yotsuba", r.URL.Query().Get("title"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.ElementsMatch(t, []string{"cover_art", "author", "artist"}, r.URL.Query()["includes[]"])
		assert.Equal(t, "palbot-test", r.Header.Get("User-Agent"))
		fmt.Fprintf(w, `{"result":"ok","data":[%s],"total":1}`, mangaJSON)
	})

	results, err := c.SearchManga(context.Background(), "yotsuba", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	m := results[0]
	assert.Equal(t, "Yotsuba&!", m.Title)
	assert.Equal(t, "Yotsuba is a strange little girl.", m.Description)
	assert.Equal(t, []string{"Comedy", "Slice of Life"}, m.Tags)
	assert.Equal(t, "shounen", m.Demographic)
	assert.Equal(t, RatingSafe, m.ContentRating)
	assert.Empty(t, m.LastVolume)
	assert.Equal(t, []string{"Azuma Kiyohiko"}, m.Authors)
	assert.Equal(t, []string{"Azuma Kiyohiko"}, m.Artists)
	assert.Equal(t, "https://mangadex.org/title/m-1", m.URL())
	assert.Equal(t, "https://uploads.mangadex.org/covers/m-1/cover.jpg", m.CoverURL())
}

func TestChapterLoadsParentManga(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chapter/ch-9":
			fmt.Fprint(w, `{"result":"ok","data":{
				"id":"ch-9","type":"chapter",
				"attributes":{"title":"Yotsuba & Rain","chapter":"12","pages":24,"createdAt":"2020-01-02T03:04:05+00:00"},
				"relationships":[
					{"id":"g-1","type":"scanlation_group","attributes":{"name":"Team A"}},
					{"id":"g-2","type":"scanlation_group","attributes":{"name":"Team B"}},
					{"id":"u-1","type":"user","attributes":{"username":"uploader1"}},
					{"id":"m-1","type":"manga","attributes":{}}
				]}}`)
		case "/manga/m-1":
			fmt.Fprintf(w, `{"result":"ok","data":%s}`, mangaJSON)
		default:
			http.NotFound(w, r)
		}
	})

	ch, err := c.Chapter(context.Background(), "ch-9")
	require.NoError(t, err)

	assert.Equal(t, "Yotsuba & Rain", ch.Title)
	assert.Equal(t, "12", ch.Number)
	assert.Equal(t, 24, ch.Pages)
	assert.Equal(t, 2020, ch.CreatedAt.Year())
	assert.Equal(t, []string{"Team A", "Team B"}, ch.ScanlatorGroups)
	assert.Equal(t, "uploader1", ch.Uploader)
	require.NotNil(t, ch.Manga)
	assert.Equal(t, "cover.jpg", ch.Manga.CoverFile)
	assert.Equal(t, "https://mangadex.org/chapter/ch-9", ch.URL())
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind usererr.Kind
		wantMsg  string
	}{
		{name: "not found", status: http.StatusNotFound, wantKind: usererr.InvalidInput, wantMsg: "Nothing on MangaDex has that ID."},
		{name: "server error", status: http.StatusBadGateway, wantKind: usererr.UpstreamFailure, wantMsg: "MangaDex failed with 502."},
		{name: "bad json", status: http.StatusOK, body: "{", wantKind: usererr.UpstreamFailure, wantMsg: "MangaDex sent a response that could not be read."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := c.Manga(context.Background(), "m-1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantMsg, usererr.Message(err))
		})
	}
}

func TestLocalizedPick(t *testing.T) {
	assert.Equal(t, "en", localized{"en": "en", "de": "de"}.pick())
	assert.Equal(t, "de", localized{"ja": "ja", "de": "de"}.pick())
	assert.Empty(t, localized{}.pick())
}
