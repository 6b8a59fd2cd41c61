package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/foliolabs/folio/internal/adapters/catalog"
	"github.com/foliolabs/folio/internal/adapters/metadata"
	"github.com/foliolabs/folio/internal/domain/match"
	"github.com/foliolabs/folio/internal/domain/model"
	"github.com/foliolabs/folio/internal/domain/request"
	"github.com/foliolabs/folio/internal/domain/text"
	"github.com/foliolabs/folio/pkg/logger"
	"github.com/foliolabs/folio/pkg/metrics"
)

// Default settle-poll policy for freshly created backend records.
const (
	defaultPollInitial     = 500 * time.Millisecond
	defaultPollMultiplier  = 2.0
	defaultPollMaxAttempts = 4
)

// Catalog is the acquisition backend surface the resolver drives.
type Catalog interface {
	LookupAuthor(ctx context.Context, name string) ([]match.Candidate, error)
	LookupBook(ctx context.Context, term string) ([]match.Candidate, error)
	Authors(ctx context.Context) ([]match.Candidate, error)
	AuthorBooks(ctx context.Context, authorID int64) ([]match.Candidate, error)
	CreateAuthor(ctx context.Context, cand match.Candidate) (match.Candidate, error)
	CreateBook(ctx context.Context, cand match.Candidate, authorID int64) (match.Candidate, error)
	TriggerSearch(ctx context.Context, bookID int64) error
}

// Enricher supplies canonical metadata from a public catalog. Optional; a
// nil Enricher skips the enrichment step entirely.
type Enricher interface {
	Search(ctx context.Context, title, author string) (*metadata.Enrichment, error)
}

// Resolver drives a single request through the resolution ladder: clean up
// the title, try a direct book hit, then resolve the author, then the book,
// creating whichever records the backend is missing, and finally trigger an
// acquisition search.
//
// The returned error is reserved for conditions with no fallback (backend
// misconfiguration such as a missing quality profile). Every ordinary
// failure is a terminal Outcome with a typed reason.
type Resolver struct {
	catalog  Catalog
	enricher Enricher
	matcher  *match.Matcher
	clock    clockwork.Clock
	logger   logger.Logger

	pollInitial     time.Duration
	pollMultiplier  float64
	pollMaxAttempts int
}

// NewResolver creates a resolver for the given backend.
func NewResolver(cat Catalog, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		catalog:         cat,
		matcher:         match.New(),
		clock:           clockwork.NewRealClock(),
		logger:          logger.Get().Named("resolver"),
		pollInitial:     defaultPollInitial,
		pollMultiplier:  defaultPollMultiplier,
		pollMaxAttempts: defaultPollMaxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve runs one request to a terminal outcome.
func (r *Resolver) Resolve(ctx context.Context, req model.Request) (model.Outcome, error) {
	outcome := model.Outcome{RequestID: req.ID, Title: req.Title, Author: req.Author}

	title, authorName := request.Preprocess(req.Title, req.Author)
	if title != req.Title || authorName != req.Author {
		r.logger.Debug(ctx, "request fields cleaned",
			logger.String("title", title),
			logger.String("author", authorName),
		)
	}
	title, authorName = r.enrich(ctx, title, authorName)

	if done, err := r.tryDirect(ctx, &outcome, title, authorName); done {
		return outcome, err
	}

	author, err := r.resolveAuthor(ctx, &outcome, authorName)
	if err != nil {
		return outcome, err
	}
	if author == nil {
		if outcome.Status == "" {
			outcome.Status = model.StatusNotFound
			outcome.Reason = model.FailureAuthorNotFound
			r.logger.Info(ctx, "no credible author found",
				logger.String("requestID", req.ID),
				logger.String("author", authorName),
			)
		}
		return outcome, nil
	}
	outcome.AuthorID = author.ID
	outcome.AuthorName = author.Name

	book := r.resolveBook(ctx, &outcome, title, authorName, author.ID)
	if book == nil {
		if outcome.Status == "" {
			outcome.Status = model.StatusNotFound
			outcome.Reason = model.FailureBookNotFound
			r.logger.Info(ctx, "no credible book found",
				logger.String("requestID", req.ID),
				logger.String("title", title),
				logger.String("author", author.Name),
			)
		}
		return outcome, nil
	}

	r.placeBook(ctx, &outcome, *book, author.ID)
	return outcome, nil
}

// enrich consults the public catalog to fill gaps in the request. Failures
// never block resolution.
func (r *Resolver) enrich(ctx context.Context, title, authorName string) (string, string) {
	if r.enricher == nil {
		return title, authorName
	}
	e, err := r.enricher.Search(ctx, title, authorName)
	if err != nil {
		r.logger.Debug(ctx, "metadata enrichment unavailable", logger.Error(err))
		return title, authorName
	}
	if authorName == "" && e.Author != "" {
		authorName = e.Author
		r.logger.Info(ctx, "author filled from public catalog",
			logger.String("title", title),
			logger.String("author", authorName),
		)
	}
	return title, authorName
}

// tryDirect runs the quoted "title" author lookup, which often returns the
// exact edition with its author attached. A hit with a linkable author
// record skips the full ladder; a thin winning margin only records a
// warning on the outcome.
func (r *Resolver) tryDirect(ctx context.Context, o *model.Outcome, title, authorName string) (bool, error) {
	term := fmt.Sprintf("%q %s", title, authorName)
	cands, err := r.catalog.LookupBook(ctx, term)
	if err != nil || len(cands) == 0 {
		return false, nil
	}
	hit := r.matcher.BestBook(cands, title, authorName)
	if hit == nil {
		return false, nil
	}
	cand := hit.Candidate

	authorID := cand.AuthorID
	switch {
	case authorID != 0:
		o.AuthorName = cand.Author
	case cand.AuthorForeignID != "":
		created, err := r.catalog.CreateAuthor(ctx, match.Candidate{
			Name:      cand.Author,
			ForeignID: cand.AuthorForeignID,
		})
		if err != nil {
			if isConfigError(err) {
				return true, err
			}
			r.logger.Warn(ctx, "direct author add failed, falling back to full resolution",
				logger.String("author", cand.Author),
				logger.Error(err),
			)
			return false, nil
		}
		o.AuthorCreated = true
		o.AuthorName = created.Name
		authorID = created.ID
		// The backend imports the author's book list asynchronously; the
		// add must reference the imported record when it already landed.
		if existing := findBook(r.awaitBooks(ctx, authorID), cand); existing != nil {
			cand = *existing
		}
	default:
		return false, nil
	}

	o.AuthorID = authorID
	r.noteMatch(ctx, o, "book", hit)
	r.logger.Debug(ctx, "direct lookup hit",
		logger.String("title", cand.Name),
		logger.String("author", o.AuthorName),
	)
	r.placeBook(ctx, o, cand, authorID)
	return true, nil
}

// resolveAuthor walks the author ladder: exact name among tracked authors,
// fuzzy among tracked, fuzzy over the backend's remote lookup, then record
// creation when the winner is not tracked yet. A nil result with an empty
// outcome status means no credible author exists.
func (r *Resolver) resolveAuthor(ctx context.Context, o *model.Outcome, name string) (*match.Candidate, error) {
	known, err := r.catalog.Authors(ctx)
	if err != nil {
		r.logger.Warn(ctx, "listing tracked authors failed", logger.Error(err))
	}

	norm := text.Normalize(name)
	for i := range known {
		if text.Normalize(known[i].Name) == norm {
			return &known[i], nil
		}
	}
	if hit := r.matcher.BestAuthor(known, name); hit != nil {
		r.noteMatch(ctx, o, "author", hit)
		return &hit.Candidate, nil
	}

	cands, err := r.catalog.LookupAuthor(ctx, name)
	if err != nil {
		r.logger.Warn(ctx, "author lookup failed",
			logger.String("author", name),
			logger.Error(err),
		)
	}
	hit := r.matcher.BestAuthor(cands, name)
	if hit == nil {
		return nil, nil
	}
	r.noteMatch(ctx, o, "author", hit)
	if hit.Candidate.ID != 0 {
		return &hit.Candidate, nil
	}

	created, err := r.catalog.CreateAuthor(ctx, hit.Candidate)
	if err != nil {
		if isConfigError(err) {
			return nil, err
		}
		r.logger.Error(ctx, "adding author failed",
			logger.String("author", hit.Candidate.Name),
			logger.Error(err),
		)
		o.Status = model.StatusError
		o.Reason = model.FailureAddFailed
		o.Warn(err.Error())
		return nil, nil
	}
	o.AuthorCreated = true
	return &created, nil
}

// resolveBook walks the book ladder against a resolved author: exact title
// among the author's tracked books, fuzzy among them, then fuzzy over the
// remote lookup. A freshly created author gets the settle poll first.
func (r *Resolver) resolveBook(ctx context.Context, o *model.Outcome, title, authorName string, authorID int64) *match.Candidate {
	var books []match.Candidate
	if o.AuthorCreated {
		books = r.awaitBooks(ctx, authorID)
	} else {
		got, err := r.catalog.AuthorBooks(ctx, authorID)
		if err != nil {
			r.logger.Warn(ctx, "listing author books failed",
				logger.Int64("authorID", authorID),
				logger.Error(err),
			)
		}
		books = got
	}

	norm := text.Normalize(title)
	for i := range books {
		if text.Normalize(books[i].Name) == norm {
			return &books[i]
		}
	}
	if hit := r.matcher.BestBook(books, title, authorName); hit != nil {
		r.noteMatch(ctx, o, "book", hit)
		return &hit.Candidate
	}

	cands, err := r.catalog.LookupBook(ctx, title+" "+authorName)
	if err != nil {
		r.logger.Warn(ctx, "book lookup failed",
			logger.String("title", title),
			logger.Error(err),
		)
	}
	if hit := r.matcher.BestBook(cands, title, authorName); hit != nil {
		r.noteMatch(ctx, o, "book", hit)
		return &hit.Candidate
	}
	return nil
}

// placeBook makes sure the chosen book is tracked under the author and asks
// the backend to hunt for its files. A failed search trigger downgrades to
// a warning; the request is still resolved.
func (r *Resolver) placeBook(ctx context.Context, o *model.Outcome, cand match.Candidate, authorID int64) {
	if cand.ID == 0 {
		created, err := r.catalog.CreateBook(ctx, cand, authorID)
		if err != nil {
			// The book may have landed via the author's metadata refresh
			// between lookup and add. Re-check before giving up.
			if existing := r.refetchBook(ctx, cand, authorID); existing != nil {
				cand = *existing
			} else {
				r.logger.Error(ctx, "adding book failed",
					logger.String("title", cand.Name),
					logger.Int64("authorID", authorID),
					logger.Error(err),
				)
				o.Status = model.StatusError
				o.Reason = model.FailureAddFailed
				o.Warn(err.Error())
				return
			}
		} else {
			o.BookAdded = true
			cand = created
			r.awaitBookIndexed(ctx, authorID, cand.ID)
		}
	}

	o.BookID = cand.ID
	o.BookTitle = cand.Name
	o.Status = model.StatusResolved

	if err := r.catalog.TriggerSearch(ctx, cand.ID); err != nil {
		r.logger.Warn(ctx, "search trigger failed",
			logger.Int64("bookID", cand.ID),
			logger.Error(err),
		)
		o.Warn("search trigger failed: " + err.Error())
	}
}

// awaitBooks polls a freshly created author's book list with bounded
// backoff until it is non-empty. An empty list after the final attempt is
// returned as-is; the caller falls through to the remote lookup.
func (r *Resolver) awaitBooks(ctx context.Context, authorID int64) []match.Candidate {
	var books []match.Candidate
	delay := r.pollInitial
	for attempt := 1; attempt <= r.pollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return books
		case <-r.clock.After(delay):
		}
		got, err := r.catalog.AuthorBooks(ctx, authorID)
		if err == nil {
			books = got
			if len(books) > 0 {
				return books
			}
		}
		delay = time.Duration(float64(delay) * r.pollMultiplier)
	}
	r.logger.Debug(ctx, "author book list did not settle",
		logger.Int64("authorID", authorID),
		logger.Int("attempts", r.pollMaxAttempts),
	)
	return books
}

// awaitBookIndexed waits, bounded, for a created book to show up in the
// author's book list so the search command has something to act on.
func (r *Resolver) awaitBookIndexed(ctx context.Context, authorID, bookID int64) {
	delay := r.pollInitial
	for attempt := 1; attempt <= r.pollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-r.clock.After(delay):
		}
		books, err := r.catalog.AuthorBooks(ctx, authorID)
		if err == nil {
			for i := range books {
				if books[i].ID == bookID {
					return
				}
			}
		}
		delay = time.Duration(float64(delay) * r.pollMultiplier)
	}
	r.logger.Debug(ctx, "created book not indexed yet",
		logger.Int64("bookID", bookID),
		logger.Int64("authorID", authorID),
	)
}

// refetchBook re-queries the author's books once after a failed add.
func (r *Resolver) refetchBook(ctx context.Context, cand match.Candidate, authorID int64) *match.Candidate {
	books, err := r.catalog.AuthorBooks(ctx, authorID)
	if err != nil {
		return nil
	}
	return findBook(books, cand)
}

// noteMatch records match quality metrics and surfaces low-confidence
// selections as outcome warnings.
func (r *Resolver) noteMatch(ctx context.Context, o *model.Outcome, kind string, hit *match.Scored) {
	metrics.RecordMatchScore(kind, float64(hit.Score))
	if hit.Ambiguous {
		metrics.RecordAmbiguousMatch()
		o.Warn(fmt.Sprintf("low-confidence %s match: %s (score %d)", kind, hit.Candidate.Name, hit.Score))
	}
}

// findBook locates cand in a book list by foreign id, falling back to
// normalized title equality.
func findBook(books []match.Candidate, cand match.Candidate) *match.Candidate {
	norm := text.Normalize(cand.Name)
	for i := range books {
		if cand.ForeignID != "" && books[i].ForeignID == cand.ForeignID {
			return &books[i]
		}
		if text.Normalize(books[i].Name) == norm {
			return &books[i]
		}
	}
	return nil
}

// isConfigError reports whether err is a backend misconfiguration with no
// fallback.
func isConfigError(err error) bool {
	return errors.Is(err, catalog.ErrNoQualityProfile) ||
		errors.Is(err, catalog.ErrNoMetadataProfile) ||
		errors.Is(err, catalog.ErrNoRootFolder)
}
