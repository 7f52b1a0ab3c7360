package article

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchMetadata(t *testing.T) {
	t.Run("full set of tags", func(t *testing.T) {
		srv := servePage(t, `<!DOCTYPE html><html><head>
			<meta property="og:title" content="A Headline" />
			<meta property="og:description" content="  A summary.  " />
			<meta property="og:image" content="https://cdn.example.com/hero.jpg" />
			<meta property="article:published_time" content="2026-08-01T12:00:00Z" />
		</head><body><p>hi</p></body></html>`)

		meta, err := FetchMetadata(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)

		assert.Equal(t, "A Headline", meta.Title)
		assert.Equal(t, "A summary.", meta.Description)
		assert.Equal(t, "https://cdn.example.com/hero.jpg", meta.Image)
		assert.Equal(t, "2026-08-01T12:00:00Z", meta.Published)
		assert.False(t, meta.Empty())
	})

	t.Run("name attribute instead of property", func(t *testing.T) {
		srv := servePage(t, `<html><head>
			<meta name="og:title" content="Named" />
		</head></html>`)

		meta, err := FetchMetadata(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "Named", meta.Title)
	})

	t.Run("no open graph tags yields empty metadata", func(t *testing.T) {
		srv := servePage(t, `<html><head><title>Plain page</title>
			<meta property="og:image" content="https://cdn.example.com/x.png" />
		</head></html>`)

		meta, err := FetchMetadata(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		// An image alone does not make the page postable.
		assert.True(t, meta.Empty())
	})

	t.Run("non-200 fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(srv.Close)

		_, err := FetchMetadata(context.Background(), srv.Client(), srv.URL)
		assert.Error(t, err)
	})
}
