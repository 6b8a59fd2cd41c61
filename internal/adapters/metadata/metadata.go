// Package metadata enriches a request from a public book catalog before
// orchestration: canonical title/author spelling, ISBN, first publication
// year. Enrichment is best-effort; a miss never fails a request.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/foliolabs/folio/pkg/logger"
)

// Default client configuration constants.
const (
	defaultBaseURL = "https://openlibrary.org"
	defaultTimeout = 10 * time.Second
	searchLimit    = 5
)

// Sentinel kinds for metadata errors.
var (
	ErrRequestFailed = errors.New("metadata request failed")
	ErrNotFound      = errors.New("no metadata found")
)

// Doer abstracts the HTTP client so tests can inject fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Enrichment holds what the public catalog knows about a work.
type Enrichment struct {
	Title     string
	Author    string
	ISBN      string
	FirstYear int
	Subjects  []string
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpc = doer
		}
	}
}

// WithBaseURL points the client at a different catalog host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client queries an OpenLibrary-compatible search API.
type Client struct {
	baseURL string
	httpc   Doer
	logger  logger.Logger
}

// New creates a metadata client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
		logger:  logger.Get().Named("metadata"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Subject          []string `json:"subject"`
}

// Search looks a work up by title and optional author and returns the top
// hit, or ErrNotFound when the catalog has nothing.
func (c *Client) Search(ctx context.Context, title, author string) (*Enrichment, error) {
	q := url.Values{
		"title": []string{title},
		"limit": []string{fmt.Sprint(searchLimit)},
	}
	if author != "" {
		q.Set("author", author)
	}

	var resp searchResponse
	if err := c.get(ctx, "/search.json", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Docs) == 0 {
		return nil, ErrNotFound
	}

	doc := resp.Docs[0]
	e := &Enrichment{
		Title:     doc.Title,
		FirstYear: doc.FirstPublishYear,
		Subjects:  doc.Subject,
	}
	if len(doc.AuthorName) > 0 {
		e.Author = doc.AuthorName[0]
	}
	if len(doc.ISBN) > 0 {
		e.ISBN = doc.ISBN[0]
	}
	return e, nil
}

// ByISBN looks a work up by its ISBN.
func (c *Client) ByISBN(ctx context.Context, isbn string) (*Enrichment, error) {
	q := url.Values{"q": []string{"isbn:" + isbn}, "limit": []string{"1"}}

	var resp searchResponse
	if err := c.get(ctx, "/search.json", q, &resp); err != nil {
		return nil, err
	}
	if len(resp.Docs) == 0 {
		return nil, ErrNotFound
	}

	doc := resp.Docs[0]
	e := &Enrichment{
		Title:     doc.Title,
		ISBN:      isbn,
		FirstYear: doc.FirstPublishYear,
		Subjects:  doc.Subject,
	}
	if len(doc.AuthorName) > 0 {
		e.Author = doc.AuthorName[0]
	}
	return e, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
