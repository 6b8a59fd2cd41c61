package match_test

import (
	"strings"
	"testing"
	"time"

	"github.com/foliolabs/folio/internal/domain/match"
	. "github.com/smartystreets/goconvey/convey"
)

func date(year int) time.Time {
	return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func TestScoreBook(t *testing.T) {
	m := match.New()

	Convey("Given a request for Dune by Frank Herbert", t, func() {
		Convey("Then the exact edition collects title, author, era and brevity bonuses", func() {
			s := m.ScoreBook(match.Candidate{
				Name:        "Dune",
				Author:      "Frank Herbert",
				ReleaseDate: date(1965),
				Rating:      4.25,
			}, "Dune", "Frank Herbert")

			// 150 title sim + 200 exact title + 120 author sim + 150 exact
			// author + 25 mid-century + 40 short titles + 17 rating.
			So(s.Score, ShouldEqual, 702)
			So(s.TitleSim, ShouldEqual, 1.0)
		})

		Convey("Then a subtitled edition still matches on the core title", func() {
			s := m.ScoreBook(match.Candidate{
				Name:   "Dune: Book One of the Dune Chronicles",
				Author: "Frank Herbert",
			}, "Dune", "Frank Herbert")

			So(strings.Join(s.Reasons, ";"), ShouldContainSubstring, "core title match")
			So(s.TitleSim, ShouldEqual, 1.0)
		})
	})

	Convey("Given a request for Dracula by Bram Stoker", t, func() {
		Convey("Then a biography of the author scores deeply negative", func() {
			s := m.ScoreBook(match.Candidate{
				Name:   "The Life of Bram Stoker",
				Author: "Barbara Belford",
			}, "Dracula", "Bram Stoker")

			So(s.Score, ShouldBeLessThan, 0)
			trail := strings.Join(s.Reasons, ";")
			So(trail, ShouldContainSubstring, "biography of the requested author")
			So(trail, ShouldContainSubstring, "requested author named in the title")
		})
	})

	Convey("Given a '<subject> by <biographer>' title naming the requested author", t, func() {
		Convey("Then the biographer pattern fires", func() {
			s := m.ScoreBook(match.Candidate{
				Name:   "Jane Austen by Claire Tomalin",
				Author: "Claire Tomalin",
			}, "Persuasion", "Jane Austen")

			So(strings.Join(s.Reasons, ";"), ShouldContainSubstring, `before "by"`)
		})
	})

	Convey("Given a series volume against a short requested title", t, func() {
		Convey("Then the series penalty applies", func() {
			s := m.ScoreBook(match.Candidate{
				Name:        "Dune Messiah",
				Author:      "Frank Herbert",
				SeriesTitle: "Dune Chronicles",
			}, "Dune", "Frank Herbert")

			So(strings.Join(s.Reasons, ";"), ShouldContainSubstring, "series volume")
		})
	})
}

func TestBestBook(t *testing.T) {
	m := match.New()

	Convey("Given the requested work and a biography about its author", t, func() {
		dracula := match.Candidate{
			ID:          10,
			Name:        "Dracula",
			Author:      "Bram Stoker",
			ReleaseDate: date(1897),
		}
		biography := match.Candidate{
			ID:     11,
			Name:   "The Life of Bram Stoker",
			Author: "Barbara Belford",
		}

		Convey("Then the actual work wins decisively", func() {
			best := m.BestBook([]match.Candidate{biography, dracula}, "Dracula", "Bram Stoker")

			So(best, ShouldNotBeNil)
			So(best.Candidate.ID, ShouldEqual, 10)
			So(best.Ambiguous, ShouldBeFalse)
		})

		Convey("Then the biography alone cannot win", func() {
			So(m.BestBook([]match.Candidate{biography}, "Dracula", "Bram Stoker"), ShouldBeNil)
		})
	})

	Convey("Given no textual relation to the request", t, func() {
		Convey("Then nothing clears the floor", func() {
			stranger := match.Candidate{Name: "Pride and Prejudice", Author: "Jane Austen"}
			So(m.BestBook([]match.Candidate{stranger}, "Dune", "Frank Herbert"), ShouldBeNil)
			So(m.BestBook(nil, "Dune", "Frank Herbert"), ShouldBeNil)
		})
	})

	Convey("Given two editions of the same work", t, func() {
		Convey("Then the narrow margin is flagged ambiguous", func() {
			a := match.Candidate{ID: 1, Name: "Dune", Author: "Frank Herbert", Rating: 4.25}
			b := match.Candidate{ID: 2, Name: "Dune", Author: "Frank Herbert", Rating: 4.0}
			best := m.BestBook([]match.Candidate{a, b}, "Dune", "Frank Herbert")

			So(best, ShouldNotBeNil)
			So(best.Ambiguous, ShouldBeTrue)
		})
	})
}
