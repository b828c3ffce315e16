// Package arxiv fetches recent papers from the arXiv Atom API.
//
// The API asks clients to space consecutive requests by a few seconds, so
// the client wraps every call in a shared rate limiter.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/paperboy-dev/paperboy-api/internal/domain"
	"github.com/paperboy-dev/paperboy-api/internal/platform/logger"
)

const (
	// baseURL is the arXiv API query endpoint.
	baseURL = "http://export.arxiv.org/api/query"

	// requestInterval is the minimum spacing between API requests,
	// per arXiv's published usage guidelines.
	requestInterval = 3 * time.Second

	// publishedLayout is the timestamp format used in Atom entries.
	publishedLayout = "2006-01-02T15:04:05Z"

	// sourceName tags every fetched paper with its origin feed.
	sourceName = "arXiv"

	// noAbstractPlaceholder stands in for entries without a summary.
	noAbstractPlaceholder = "No Abstract"
)

// atomFeed mirrors the subset of the arXiv Atom response we consume.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href string `xml:"href"`
	Rel  string `xml:"rel"`
	Type string `xml:"type"`
}

// Client queries the arXiv API and converts Atom entries into domain papers.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an arXiv API client. If httpClient is nil a client
// with a 30-second timeout is used. If logger is nil, a default logger
// will be used.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(requestInterval), 1),
		baseURL:    baseURL,
		logger:     logger.With(slog.String("component", "arxiv_client")),
	}
}

// Search fetches the most recently submitted papers matching the given
// query (e.g. "cat:cs.AI"), newest first. Returns an error if the request
// or the feed parse fails.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.Paper, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build arxiv request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read arxiv response: %w", err)
	}

	var feed atomFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse arxiv feed: %w", err)
	}

	papers := make([]domain.Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		paper, err := entryToPaper(entry)
		if err != nil {
			log.Warn("skipping malformed feed entry",
				slog.String("entry_id", entry.ID),
				slog.String("error", err.Error()))
			continue
		}
		papers = append(papers, *paper)
	}

	log.Debug("arxiv search completed",
		slog.String("query", query),
		slog.Int("entries", len(feed.Entries)),
		slog.Int("papers", len(papers)))
	return papers, nil
}

// FetchQuery is the forgiving variant of Search used by the digest
// pipeline: any failure is logged and an empty slice returned, so one bad
// upstream response never aborts a delivery run.
func (c *Client) FetchQuery(ctx context.Context, query string, maxResults int) []domain.Paper {
	log := logger.FromContextOrDefault(ctx, c.logger)

	papers, err := c.Search(ctx, query, maxResults)
	if err != nil {
		log.Error("arxiv fetch failed, continuing with empty result",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return []domain.Paper{}
	}
	return papers
}

func entryToPaper(entry atomEntry) (*domain.Paper, error) {
	title := collapseWhitespace(entry.Title)
	abstract := collapseWhitespace(entry.Summary)
	if abstract == "" {
		abstract = noAbstractPlaceholder
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	// Prefer the alternate link; fall back to the entry ID, which arXiv
	// also sets to the abstract page URL.
	pageURL := entry.ID
	for _, link := range entry.Links {
		if link.Rel == "alternate" && link.Href != "" {
			pageURL = link.Href
			break
		}
	}

	publishedAt, err := time.Parse(publishedLayout, entry.Published)
	if err != nil {
		publishedAt = time.Now().UTC()
	}

	return domain.NewPaper(pageURL, title, abstract, authors, sourceName, publishedAt)
}

// collapseWhitespace trims an Atom text field and folds internal newlines
// and runs of spaces into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
