// Package catalog implements the REST client for the acquisition backend:
// fuzzy author/book lookups, existing-record listings, record creation and
// search triggering. Lookup responses are cached with a TTL and identical
// concurrent lookups are coalesced.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/foliolabs/folio/internal/adapters/cache"
	"github.com/foliolabs/folio/internal/domain/match"
	"github.com/foliolabs/folio/pkg/logger"
	"github.com/foliolabs/folio/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout         = 30 * time.Second
	defaultLookupTTL       = 5 * time.Minute
	defaultLookupCacheSize = 500
	apiBase                = "/api/v1"
)

// Doer abstracts the HTTP client so tests can inject fakes.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the acquisition backend.
type Client struct {
	baseURL string
	apiKey  string
	httpc   Doer
	logger  logger.Logger
	clock   clockwork.Clock

	lookupTTL       time.Duration
	lookupCacheSize int

	authorLookups *cache.Cache[[]match.Candidate]
	bookLookups   *cache.Cache[[]match.Candidate]
	flight        singleflight.Group
}

// New creates a catalog client for the backend at baseURL.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:         baseURL,
		apiKey:          apiKey,
		httpc:           &http.Client{Timeout: defaultTimeout},
		logger:          logger.Get().Named("catalog"),
		clock:           clockwork.NewRealClock(),
		lookupTTL:       defaultLookupTTL,
		lookupCacheSize: defaultLookupCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.authorLookups = cache.New[[]match.Candidate](
		cache.WithTTL(c.lookupTTL),
		cache.WithMaxSize(c.lookupCacheSize),
		cache.WithClock(c.clock),
	)
	c.bookLookups = cache.New[[]match.Candidate](
		cache.WithTTL(c.lookupTTL),
		cache.WithMaxSize(c.lookupCacheSize),
		cache.WithClock(c.clock),
	)
	return c
}

// LookupAuthor runs the backend's fuzzy author search.
func (c *Client) LookupAuthor(ctx context.Context, name string) ([]match.Candidate, error) {
	return c.cachedLookup(ctx, c.authorLookups, "author:"+name, func() ([]match.Candidate, error) {
		var resources []authorResource
		q := url.Values{"term": []string{name}}
		if err := c.get(ctx, "/author/lookup", q, &resources); err != nil {
			return nil, err
		}
		return authorCandidates(resources), nil
	})
}

// LookupBook runs the backend's fuzzy book search. The term may be a bare
// title or a quoted "title" author phrase.
func (c *Client) LookupBook(ctx context.Context, term string) ([]match.Candidate, error) {
	return c.cachedLookup(ctx, c.bookLookups, "book:"+term, func() ([]match.Candidate, error) {
		var resources []bookResource
		q := url.Values{"term": []string{term}}
		if err := c.get(ctx, "/book/lookup", q, &resources); err != nil {
			return nil, err
		}
		return bookCandidates(resources), nil
	})
}

// Authors lists every author already present in the backend.
func (c *Client) Authors(ctx context.Context) ([]match.Candidate, error) {
	var resources []authorResource
	if err := c.get(ctx, "/author", nil, &resources); err != nil {
		return nil, err
	}
	return authorCandidates(resources), nil
}

// AuthorBooks lists the books the backend already tracks for an author.
func (c *Client) AuthorBooks(ctx context.Context, authorID int64) ([]match.Candidate, error) {
	var resources []bookResource
	q := url.Values{"authorId": []string{strconv.FormatInt(authorID, 10)}}
	if err := c.get(ctx, "/book", q, &resources); err != nil {
		return nil, err
	}
	return bookCandidates(resources), nil
}

// CreateAuthor adds an author record. The backend needs a quality profile,
// a metadata profile and a root folder; missing any of them is a
// configuration error with no fallback, so it propagates.
func (c *Client) CreateAuthor(ctx context.Context, cand match.Candidate) (match.Candidate, error) {
	quality, metadata, root, err := c.addDefaults(ctx)
	if err != nil {
		return match.Candidate{}, err
	}

	payload := authorResource{
		AuthorName:        cand.Name,
		ForeignAuthorID:   cand.ForeignID,
		QualityProfileID:  quality,
		MetadataProfileID: metadata,
		RootFolderPath:    root,
		Monitored:         true,
		AddOptions:        &authorAddOptions{SearchForMissingBooks: false},
	}
	var created authorResource
	if err := c.post(ctx, "/author", payload, &created); err != nil {
		return match.Candidate{}, err
	}
	c.logger.Info(ctx, "author added to backend",
		logger.String("author", created.AuthorName),
		logger.Int("id", int(created.ID)),
	)
	return created.candidate(), nil
}

// CreateBook adds a book record under an existing author.
func (c *Client) CreateBook(ctx context.Context, cand match.Candidate, authorID int64) (match.Candidate, error) {
	payload := bookResource{
		Title:         cand.Name,
		ForeignBookID: cand.ForeignID,
		AuthorID:      authorID,
		Monitored:     true,
		AddOptions:    &bookAddOptions{SearchForNewBook: false},
	}
	var created bookResource
	if err := c.post(ctx, "/book", payload, &created); err != nil {
		return match.Candidate{}, err
	}
	c.logger.Info(ctx, "book added to backend",
		logger.String("title", created.Title),
		logger.Int("id", int(created.ID)),
	)
	return created.candidate(), nil
}

// TriggerSearch asks the backend to hunt for the book's files.
func (c *Client) TriggerSearch(ctx context.Context, bookID int64) error {
	cmd := commandRequest{Name: "BookSearch", BookIDs: []int64{bookID}}
	return c.post(ctx, "/command", cmd, nil)
}

// QualityProfiles lists the backend's quality profiles.
func (c *Client) QualityProfiles(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := c.get(ctx, "/qualityprofile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// MetadataProfiles lists the backend's metadata profiles.
func (c *Client) MetadataProfiles(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := c.get(ctx, "/metadataprofile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// RootFolders lists the backend's library locations.
func (c *Client) RootFolders(ctx context.Context) ([]RootFolder, error) {
	var folders []RootFolder
	if err := c.get(ctx, "/rootfolder", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// addDefaults resolves the profile and folder ids a create call needs.
func (c *Client) addDefaults(ctx context.Context) (quality, metadata int64, root string, err error) {
	qps, err := c.QualityProfiles(ctx)
	if err != nil {
		return 0, 0, "", err
	}
	if len(qps) == 0 {
		return 0, 0, "", ErrNoQualityProfile
	}
	mps, err := c.MetadataProfiles(ctx)
	if err != nil {
		return 0, 0, "", err
	}
	if len(mps) == 0 {
		return 0, 0, "", ErrNoMetadataProfile
	}
	roots, err := c.RootFolders(ctx)
	if err != nil {
		return 0, 0, "", err
	}
	if len(roots) == 0 {
		return 0, 0, "", ErrNoRootFolder
	}
	return qps[0].ID, mps[0].ID, roots[0].Path, nil
}

// cachedLookup serves a lookup from cache when fresh, coalescing identical
// concurrent misses into a single backend call.
func (c *Client) cachedLookup(ctx context.Context, store *cache.Cache[[]match.Candidate], key string, fetch func() ([]match.Candidate, error)) ([]match.Candidate, error) {
	if hit, ok := store.Get(key); ok {
		metrics.RecordCacheHit()
		return hit, nil
	}
	metrics.RecordCacheMiss()

	v, err, _ := c.flight.Do(key, func() (any, error) {
		got, err := fetch()
		if err != nil {
			return nil, err
		}
		store.Set(key, got)
		return got, nil
	})
	if err != nil {
		return nil, err
	}
	candidates, _ := v.([]match.Candidate)
	return candidates, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	start := time.Now()
	defer func() {
		metrics.RecordCatalogLatency(path, float64(time.Since(start).Milliseconds()))
	}()

	endpoint := c.baseURL + apiBase + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %w", ErrRequestFailed, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, path, err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordCatalogError(path)
		return fmt.Errorf("%w: %s %s: %d", ErrUnexpectedStatus, method, path, resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecodeFailed, path, err)
	}
	return nil
}
