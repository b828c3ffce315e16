package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperboy-dev/paperboy-api/internal/domain"
)

func testPaper(t *testing.T, url, title string) *domain.Paper {
	t.Helper()
	p, err := domain.NewPaper(
		url,
		title,
		"An abstract about "+title,
		[]string{"Ada Lovelace", "Alan Turing"},
		"arXiv",
		time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return p
}

func TestRenderSubjectCountsPapers(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	subject, _, err := r.Render([]*domain.Paper{
		testPaper(t, "http://arxiv.org/abs/1", "One"),
		testPaper(t, "http://arxiv.org/abs/2", "Two"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Research Digest - 2 new papers", subject)

	subject, _, err = r.Render([]*domain.Paper{testPaper(t, "http://arxiv.org/abs/1", "One")})
	require.NoError(t, err)
	assert.Equal(t, "Research Digest - 1 new paper", subject)
}

func TestRenderBodyContainsPaperDetails(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	p := testPaper(t, "http://arxiv.org/abs/2101.00001", "Attention Everywhere")
	synopsis := "A generated synopsis."
	p.Synopsis = &synopsis

	_, body, err := r.Render([]*domain.Paper{p})
	require.NoError(t, err)

	assert.Contains(t, body, "<h1>Research Digest</h1>")
	assert.Contains(t, body, `href="http://arxiv.org/abs/2101.00001"`)
	assert.Contains(t, body, "Attention Everywhere")
	assert.Contains(t, body, "Ada Lovelace, Alan Turing")
	assert.Contains(t, body, "A generated synopsis.")
	assert.Contains(t, body, "arXiv - 2026-08-30")
}

func TestRenderFallsBackToAbstractWithoutSynopsis(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	p := testPaper(t, "http://arxiv.org/abs/1", "No Synopsis Yet")

	_, body, err := r.Render([]*domain.Paper{p})
	require.NoError(t, err)
	assert.Contains(t, body, "An abstract about No Synopsis Yet")
}

func TestRenderEscapesFeedContent(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	p := testPaper(t, "http://arxiv.org/abs/1", `<script>alert("x")</script>`)

	_, body, err := r.Render([]*domain.Paper{p})
	require.NoError(t, err)
	assert.NotContains(t, body, `<script>alert`)
}

func TestDedupByURLKeepsFirstOccurrence(t *testing.T) {
	a := *testPaper(t, "http://arxiv.org/abs/1", "First Copy")
	b := *testPaper(t, "http://arxiv.org/abs/2", "Other")
	c := *testPaper(t, "http://arxiv.org/abs/1", "Second Copy")

	unique := DedupByURL([]domain.Paper{a, b, c})
	require.Len(t, unique, 2)
	assert.Equal(t, "First Copy", unique[0].Title)
	assert.Equal(t, "Other", unique[1].Title)
}

func TestDedupByURLEmptyInput(t *testing.T) {
	assert.Empty(t, DedupByURL(nil))
}
