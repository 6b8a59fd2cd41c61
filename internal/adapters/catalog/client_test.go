package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/foliolabs/folio/internal/adapters/catalog"
	"github.com/foliolabs/folio/internal/domain/match"
	. "github.com/smartystreets/goconvey/convey"
)

const testAPIKey = "test-key"

func TestLookupAuthor(t *testing.T) {
	ctx := context.Background()

	Convey("Given a backend with a fuzzy author search", t, func() {
		var calls atomic.Int64
		var gotKey atomic.Value

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/author/lookup" {
				http.NotFound(w, r)
				return
			}
			calls.Add(1)
			gotKey.Store(r.Header.Get("X-Api-Key"))
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{
					"id":              int64(7),
					"authorName":      "Frank Herbert",
					"foreignAuthorId": "fh-1",
					"ratings":         map[string]any{"value": 4.2},
					"statistics":      map[string]any{"bookCount": 23},
				},
			})
		}))
		defer srv.Close()

		c := catalog.New(srv.URL, testAPIKey)

		Convey("Then results map onto candidates", func() {
			cands, err := c.LookupAuthor(ctx, "Frank Herbert")

			So(err, ShouldBeNil)
			So(len(cands), ShouldEqual, 1)
			So(cands[0].ID, ShouldEqual, 7)
			So(cands[0].Name, ShouldEqual, "Frank Herbert")
			So(cands[0].ForeignID, ShouldEqual, "fh-1")
			So(cands[0].Rating, ShouldEqual, 4.2)
			So(cands[0].BookCount, ShouldEqual, 23)
			So(gotKey.Load(), ShouldEqual, testAPIKey)
		})

		Convey("Then an identical lookup is served from cache", func() {
			_, err := c.LookupAuthor(ctx, "Frank Herbert")
			So(err, ShouldBeNil)
			_, err = c.LookupAuthor(ctx, "Frank Herbert")
			So(err, ShouldBeNil)

			So(calls.Load(), ShouldEqual, 1)
		})

		Convey("Then distinct terms go to the backend separately", func() {
			_, err := c.LookupAuthor(ctx, "Frank Herbert")
			So(err, ShouldBeNil)
			_, err = c.LookupAuthor(ctx, "Herbert Frank")
			So(err, ShouldBeNil)

			So(calls.Load(), ShouldEqual, 2)
		})
	})
}

func TestAuthorBooks(t *testing.T) {
	ctx := context.Background()

	Convey("Given a backend listing an author's books", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/book" || r.URL.Query().Get("authorId") != "7" {
				http.NotFound(w, r)
				return
			}
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{
					"id":            int64(42),
					"title":         "Dune",
					"foreignBookId": "d-1",
					"authorId":      int64(7),
					"releaseDate":   "1965-08-01",
					"seriesTitle":   "Dune Chronicles",
				},
			})
		}))
		defer srv.Close()

		c := catalog.New(srv.URL, testAPIKey)

		Convey("Then books map with their release dates parsed", func() {
			books, err := c.AuthorBooks(ctx, 7)

			So(err, ShouldBeNil)
			So(len(books), ShouldEqual, 1)
			So(books[0].ID, ShouldEqual, 42)
			So(books[0].Name, ShouldEqual, "Dune")
			So(books[0].AuthorID, ShouldEqual, 7)
			So(books[0].SeriesTitle, ShouldEqual, "Dune Chronicles")
			So(books[0].ReleaseDate.Year(), ShouldEqual, 1965)
		})
	})
}

func TestCreateAuthor(t *testing.T) {
	ctx := context.Background()

	Convey("Given a configured backend", t, func() {
		var created atomic.Value

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/v1/qualityprofile":
				_ = json.NewEncoder(w).Encode([]catalog.Profile{{ID: 1, Name: "eBook"}})
			case "/api/v1/metadataprofile":
				_ = json.NewEncoder(w).Encode([]catalog.Profile{{ID: 2, Name: "Standard"}})
			case "/api/v1/rootfolder":
				_ = json.NewEncoder(w).Encode([]catalog.RootFolder{{ID: 1, Path: "/books"}})
			case "/api/v1/author":
				var payload map[string]any
				_ = json.NewDecoder(r.Body).Decode(&payload)
				created.Store(payload)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"id":              int64(9),
					"authorName":      "Frank Herbert",
					"foreignAuthorId": "fh-1",
				})
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		c := catalog.New(srv.URL, testAPIKey)

		Convey("Then the create resolves profiles and returns the record", func() {
			got, err := c.CreateAuthor(ctx, match.Candidate{Name: "Frank Herbert", ForeignID: "fh-1"})

			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, 9)

			payload, _ := created.Load().(map[string]any)
			So(payload["authorName"], ShouldEqual, "Frank Herbert")
			So(payload["qualityProfileId"], ShouldEqual, 1)
			So(payload["rootFolderPath"], ShouldEqual, "/books")
			So(payload["monitored"], ShouldEqual, true)
		})
	})

	Convey("Given a backend with no quality profiles", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode([]catalog.Profile{})
		}))
		defer srv.Close()

		c := catalog.New(srv.URL, testAPIKey)

		Convey("Then the create fails with the configuration sentinel", func() {
			_, err := c.CreateAuthor(ctx, match.Candidate{Name: "Frank Herbert"})
			So(err, ShouldEqual, catalog.ErrNoQualityProfile)
		})
	})
}

func TestTriggerSearch(t *testing.T) {
	ctx := context.Background()

	Convey("Given a backend accepting commands", t, func() {
		var gotCmd atomic.Value

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/command" || r.Method != http.MethodPost {
				http.NotFound(w, r)
				return
			}
			var cmd map[string]any
			_ = json.NewDecoder(r.Body).Decode(&cmd)
			gotCmd.Store(cmd)
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		c := catalog.New(srv.URL, testAPIKey)

		Convey("Then a BookSearch command is posted for the book", func() {
			So(c.TriggerSearch(ctx, 42), ShouldBeNil)

			cmd, _ := gotCmd.Load().(map[string]any)
			So(cmd["name"], ShouldEqual, "BookSearch")
			ids, _ := cmd["bookIds"].([]any)
			So(len(ids), ShouldEqual, 1)
			So(ids[0], ShouldEqual, 42)
		})
	})
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()

	Convey("Given a backend returning a server error", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := catalog.New(srv.URL, testAPIKey)

		Convey("Then the status sentinel wraps the failure", func() {
			_, err := c.Authors(ctx)
			So(err, ShouldWrap, catalog.ErrUnexpectedStatus)
		})
	})
}
