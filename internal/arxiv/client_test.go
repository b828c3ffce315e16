package arxiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2101.00001v1</id>
    <title>Deep Learning
      for   Everything</title>
    <summary>
      We show that deep learning
      solves everything.
    </summary>
    <published>2021-01-01T12:00:00Z</published>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <link href="http://arxiv.org/abs/2101.00001v1" rel="alternate" type="text/html"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2101.00002v1</id>
    <title>Minimal Entry</title>
    <summary></summary>
    <published>not-a-timestamp</published>
    <author><name>Grace Hopper</name></author>
  </entry>
</feed>`

// newTestClient points a client at a local test server with no rate delay.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), nil)
	c.baseURL = srv.URL
	c.limiter.SetLimit(1e6)
	return c, srv
}

func TestSearchParsesFeed(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search_query")
		assert.Equal(t, "submittedDate", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "descending", r.URL.Query().Get("sortOrder"))
		assert.Equal(t, "5", r.URL.Query().Get("max_results"))
		_, _ = w.Write([]byte(sampleFeed))
	})

	papers, err := c.Search(context.Background(), "cat:cs.AI", 5)
	require.NoError(t, err)
	assert.Equal(t, "cat:cs.AI", gotQuery)
	require.Len(t, papers, 2)

	first := papers[0]
	assert.Equal(t, "Deep Learning for Everything", first.Title)
	assert.Equal(t, "We show that deep learning solves everything.", first.Abstract)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, first.Authors)
	assert.Equal(t, "http://arxiv.org/abs/2101.00001v1", first.URL)
	assert.Equal(t, "arXiv", first.Source)
	assert.Equal(t, time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC), first.PublishedAt)
	assert.Nil(t, first.Synopsis)
}

func TestSearchFillsPlaceholdersForSparseEntries(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	})

	papers, err := c.Search(context.Background(), "cat:cs.AI", 5)
	require.NoError(t, err)
	require.Len(t, papers, 2)

	second := papers[1]
	assert.Equal(t, "No Abstract", second.Abstract)
	// Missing alternate link falls back to the entry ID.
	assert.Equal(t, "http://arxiv.org/abs/2101.00002v1", second.URL)
	// Unparseable timestamps fall back to the current time.
	assert.WithinDuration(t, time.Now().UTC(), second.PublishedAt, time.Minute)
}

func TestSearchNonOKStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Search(context.Background(), "cat:cs.AI", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSearchMalformedXML(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<feed><entry>"))
	})

	_, err := c.Search(context.Background(), "cat:cs.AI", 5)
	require.Error(t, err)
}

func TestFetchQuerySwallowsErrors(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	papers := c.FetchQuery(context.Background(), "cat:cs.AI", 5)
	assert.Empty(t, papers)
}

func TestCollapseWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", collapseWhitespace("  a\n  b\t c "))
	assert.Equal(t, "", collapseWhitespace("   \n\t "))
}
