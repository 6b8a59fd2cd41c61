package match_test

import (
	"strings"
	"testing"

	"github.com/foliolabs/folio/internal/domain/match"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreAuthor(t *testing.T) {
	m := match.New()

	Convey("Given a request for Stephen King", t, func() {
		Convey("Then an exact match with a deep catalog scores every bonus", func() {
			s := m.ScoreAuthor(match.Candidate{
				Name:      "Stephen King",
				BookCount: 60,
				Rating:    4.2,
			}, "Stephen King")

			// 100 similarity + 300 exact + 150 all tokens + 120 surname
			// + 80 first name + 120 token ratio + 30 book count + 21 rating.
			So(s.Score, ShouldEqual, 921)
			So(strings.Join(s.Reasons, ";"), ShouldContainSubstring, "exact name match")
		})

		Convey("Then a shared first name alone is penalized below the floor", func() {
			s := m.ScoreAuthor(match.Candidate{Name: "Stephen Fry"}, "Stephen King")

			So(s.Score, ShouldBeLessThan, 70)
			So(strings.Join(s.Reasons, ";"), ShouldContainSubstring, "only the first name matches")
		})

		Convey("Then a biography-flavored overview costs the overview penalty", func() {
			clean := m.ScoreAuthor(match.Candidate{Name: "Stephen King"}, "Stephen King")
			bio := m.ScoreAuthor(match.Candidate{
				Name:     "Stephen King",
				Overview: "A critical study of the master of horror.",
			}, "Stephen King")

			So(bio.Score, ShouldEqual, clean.Score-100)
		})

		Convey("Then a biography-flavored genre costs the genre penalty", func() {
			clean := m.ScoreAuthor(match.Candidate{Name: "Stephen King"}, "Stephen King")
			bio := m.ScoreAuthor(match.Candidate{
				Name:   "Stephen King",
				Genres: []string{"Literary Criticism"},
			}, "Stephen King")

			So(bio.Score, ShouldEqual, clean.Score-150)
		})
	})

	Convey("Given a completely unrelated candidate", t, func() {
		Convey("Then the mismatch guard drives the score negative", func() {
			s := m.ScoreAuthor(match.Candidate{Name: "John Smith"}, "Jane Doe")
			So(s.Score, ShouldBeLessThan, 0)
		})
	})
}

func TestBestAuthor(t *testing.T) {
	m := match.New()

	Convey("Given a pool of author candidates", t, func() {
		king := match.Candidate{ID: 1, Name: "Stephen King", BookCount: 60, Rating: 4.2}
		fry := match.Candidate{ID: 2, Name: "Stephen Fry", BookCount: 20, Rating: 4.0}

		Convey("Then the exact match wins without ambiguity", func() {
			best := m.BestAuthor([]match.Candidate{fry, king}, "Stephen King")

			So(best, ShouldNotBeNil)
			So(best.Candidate.ID, ShouldEqual, 1)
			So(best.Ambiguous, ShouldBeFalse)
		})

		Convey("Then no candidate over the floor means nil", func() {
			So(m.BestAuthor([]match.Candidate{fry}, "Stephen King"), ShouldBeNil)
			So(m.BestAuthor([]match.Candidate{{Name: "John Smith"}}, "Jane Doe"), ShouldBeNil)
		})

		Convey("Then an empty pool means nil", func() {
			So(m.BestAuthor(nil, "Stephen King"), ShouldBeNil)
		})

		Convey("Then near-identical rivals are flagged ambiguous", func() {
			twin := king
			twin.ID = 3
			best := m.BestAuthor([]match.Candidate{king, twin}, "Stephen King")

			So(best, ShouldNotBeNil)
			So(best.Ambiguous, ShouldBeTrue)
		})

		Convey("Then scoring is deterministic across calls", func() {
			a := m.BestAuthor([]match.Candidate{fry, king}, "Stephen King")
			b := m.BestAuthor([]match.Candidate{king, fry}, "Stephen King")

			So(a.Candidate.ID, ShouldEqual, b.Candidate.ID)
			So(a.Score, ShouldEqual, b.Score)
		})
	})
}
