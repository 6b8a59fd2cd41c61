package catalog

import (
	"time"

	"github.com/foliolabs/folio/internal/domain/match"
)

// Wire shapes for the acquisition backend's v1 REST API. Only the fields
// the resolver consumes are mapped.

type ratings struct {
	Value float64 `json:"value"`
	Votes int     `json:"votes"`
}

type authorStatistics struct {
	BookCount int `json:"bookCount"`
}

type authorResource struct {
	ID              int64            `json:"id,omitempty"`
	AuthorName      string           `json:"authorName"`
	ForeignAuthorID string           `json:"foreignAuthorId"`
	Overview        string           `json:"overview,omitempty"`
	Genres          []string         `json:"genres,omitempty"`
	Ratings         ratings          `json:"ratings"`
	Statistics      authorStatistics `json:"statistics"`

	// Create-only fields.
	QualityProfileID  int64             `json:"qualityProfileId,omitempty"`
	MetadataProfileID int64             `json:"metadataProfileId,omitempty"`
	RootFolderPath    string            `json:"rootFolderPath,omitempty"`
	Monitored         bool              `json:"monitored,omitempty"`
	AddOptions        *authorAddOptions `json:"addOptions,omitempty"`
}

type authorAddOptions struct {
	SearchForMissingBooks bool `json:"searchForMissingBooks"`
}

type bookResource struct {
	ID            int64           `json:"id,omitempty"`
	Title         string          `json:"title"`
	ForeignBookID string          `json:"foreignBookId"`
	AuthorID      int64           `json:"authorId,omitempty"`
	Author        *authorResource `json:"author,omitempty"`
	Overview      string          `json:"overview,omitempty"`
	Genres        []string        `json:"genres,omitempty"`
	Ratings       ratings         `json:"ratings"`
	ReleaseDate   string          `json:"releaseDate,omitempty"`
	SeriesTitle   string          `json:"seriesTitle,omitempty"`

	Monitored  bool            `json:"monitored,omitempty"`
	AddOptions *bookAddOptions `json:"addOptions,omitempty"`
}

type bookAddOptions struct {
	SearchForNewBook bool `json:"searchForNewBook"`
}

// Profile is a quality or metadata profile known to the backend.
type Profile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RootFolder is a library location configured in the backend.
type RootFolder struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

type commandRequest struct {
	Name    string  `json:"name"`
	BookIDs []int64 `json:"bookIds"`
}

func (a authorResource) candidate() match.Candidate {
	return match.Candidate{
		ID:        a.ID,
		ForeignID: a.ForeignAuthorID,
		Name:      a.AuthorName,
		Rating:    a.Ratings.Value,
		BookCount: a.Statistics.BookCount,
		Overview:  a.Overview,
		Genres:    a.Genres,
	}
}

func (b bookResource) candidate() match.Candidate {
	c := match.Candidate{
		ID:          b.ID,
		ForeignID:   b.ForeignBookID,
		Name:        b.Title,
		AuthorID:    b.AuthorID,
		Rating:      b.Ratings.Value,
		Overview:    b.Overview,
		Genres:      b.Genres,
		SeriesTitle: b.SeriesTitle,
	}
	if b.Author != nil {
		c.Author = b.Author.AuthorName
		c.AuthorForeignID = b.Author.ForeignAuthorID
		if c.AuthorID == 0 {
			c.AuthorID = b.Author.ID
		}
	}
	if b.ReleaseDate != "" {
		if ts, err := time.Parse(time.RFC3339, b.ReleaseDate); err == nil {
			c.ReleaseDate = ts
		} else if ts, err := time.Parse("2006-01-02", b.ReleaseDate); err == nil {
			c.ReleaseDate = ts
		}
	}
	return c
}

func authorCandidates(resources []authorResource) []match.Candidate {
	out := make([]match.Candidate, 0, len(resources))
	for _, r := range resources {
		out = append(out, r.candidate())
	}
	return out
}

func bookCandidates(resources []bookResource) []match.Candidate {
	out := make([]match.Candidate, 0, len(resources))
	for _, r := range resources {
		out = append(out, r.candidate())
	}
	return out
}
