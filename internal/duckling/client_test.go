package duckling

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"palbot/internal/usererr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSendsFormFields(t *testing.T) {
	var got struct {
		method, contentType, locale, text, dims, tz string
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got.method = r.Method
		got.contentType = r.Header.Get("Content-Type")
		got.locale = r.PostForm.Get("locale")
		got.text = r.PostForm.Get("text")
		got.dims = r.PostForm.Get("dims")
		got.tz = r.PostForm.Get("tz")
		_, _ = w.Write([]byte(`[
			{"body":"in 2 hours","dim":"duration","start":14,"end":24,"latent":false,
			 "value":{"type":"value","unit":"hour","hour":2,"normalized":{"unit":"second","value":7200}}},
			{"body":"tomorrow","dim":"time","start":0,"end":8,"latent":false,
			 "value":{"type":"value","value":"2024-05-02T00:00:00.000+02:00","grain":"day"}}
		]`))
	}))
	defer srv.Close()

	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	c := NewWithEndpoint(srv.URL+"/parse", srv.Client())
	entities, err := c.Parse(context.Background(), "buy milk later in 2 hours", loc)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "application/x-www-form-urlencoded", got.contentType)
	assert.Equal(t, "en_US", got.locale)
	assert.Equal(t, "buy milk later in 2 hours", got.text)
	assert.Equal(t, `["time","duration"]`, got.dims)
	assert.Equal(t, "Europe/Berlin", got.tz)

	require.Len(t, entities, 2)
	assert.Equal(t, DimDuration, entities[0].Dim)
	require.NotNil(t, entities[0].Value.Normalized)
	assert.Equal(t, float64(7200), entities[0].Value.Normalized.Value)
	assert.Equal(t, DimTime, entities[1].Dim)
	assert.Equal(t, "2024-05-02T00:00:00.000+02:00", entities[1].Value.Value)
}

func TestParseUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{name: "server error", status: http.StatusInternalServerError, payload: "boom"},
		{name: "malformed json", status: http.StatusOK, payload: `{"not":"a list"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			c := NewWithEndpoint(srv.URL, srv.Client())
			_, err := c.Parse(context.Background(), "tomorrow", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, usererr.UpstreamFailure)
		})
	}
}

func TestNewBuildsParseEndpoint(t *testing.T) {
	c := New("duckling.internal", 8000, nil)
	assert.Equal(t, "http://duckling.internal:8000/parse", c.Endpoint())
}
