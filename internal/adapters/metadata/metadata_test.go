package metadata_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/foliolabs/folio/internal/adapters/metadata"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSearch(t *testing.T) {
	ctx := context.Background()

	Convey("Given a public catalog with search results", t, func() {
		var gotTitle atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search.json" {
				http.NotFound(w, r)
				return
			}
			gotTitle.Store(r.URL.Query().Get("title"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"docs": []map[string]any{
					{
						"title":              "Dune",
						"author_name":        []string{"Frank Herbert"},
						"first_publish_year": 1965,
						"isbn":               []string{"9780441013593"},
						"subject":            []string{"Science fiction"},
					},
				},
			})
		}))
		defer srv.Close()

		c := metadata.New(metadata.WithBaseURL(srv.URL))

		Convey("Then the top hit becomes the enrichment", func() {
			e, err := c.Search(ctx, "Dune", "Frank Herbert")

			So(err, ShouldBeNil)
			So(e.Title, ShouldEqual, "Dune")
			So(e.Author, ShouldEqual, "Frank Herbert")
			So(e.FirstYear, ShouldEqual, 1965)
			So(e.ISBN, ShouldEqual, "9780441013593")
			So(e.Subjects, ShouldContain, "Science fiction")
			So(gotTitle.Load(), ShouldEqual, "Dune")
		})
	})

	Convey("Given a catalog with nothing to say", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"docs": []any{}})
		}))
		defer srv.Close()

		c := metadata.New(metadata.WithBaseURL(srv.URL))

		Convey("Then Search reports ErrNotFound", func() {
			_, err := c.Search(ctx, "Unknown", "")
			So(err, ShouldEqual, metadata.ErrNotFound)
		})
	})

	Convey("Given a catalog that is down", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := metadata.New(metadata.WithBaseURL(srv.URL))

		Convey("Then the request sentinel wraps the failure", func() {
			_, err := c.Search(ctx, "Dune", "")
			So(err, ShouldWrap, metadata.ErrRequestFailed)
		})
	})
}

func TestByISBN(t *testing.T) {
	ctx := context.Background()

	Convey("Given an ISBN query", t, func() {
		var gotQuery atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery.Store(r.URL.Query().Get("q"))
			_ = json.NewEncoder(w).Encode(map[string]any{
				"docs": []map[string]any{
					{"title": "Dune", "author_name": []string{"Frank Herbert"}},
				},
			})
		}))
		defer srv.Close()

		c := metadata.New(metadata.WithBaseURL(srv.URL))

		Convey("Then the hit carries the queried ISBN", func() {
			e, err := c.ByISBN(ctx, "9780441013593")

			So(err, ShouldBeNil)
			So(e.Title, ShouldEqual, "Dune")
			So(e.ISBN, ShouldEqual, "9780441013593")
			So(gotQuery.Load(), ShouldEqual, "isbn:9780441013593")
		})
	})
}
