package text_test

import (
	"testing"

	"github.com/foliolabs/folio/internal/domain/text"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw strings with case, periods and spacing noise", t, func() {
		Convey("Then periods are stripped and whitespace collapses", func() {
			So(text.Normalize("J.R.R.  Tolkien "), ShouldEqual, "jrr tolkien")
			So(text.Normalize("  Stephen   KING"), ShouldEqual, "stephen king")
			So(text.Normalize(""), ShouldEqual, "")
		})

		Convey("Then already-normal input is unchanged", func() {
			So(text.Normalize("bram stoker"), ShouldEqual, "bram stoker")
		})
	})
}

func TestSimilarity(t *testing.T) {
	Convey("Given the edit-distance similarity", t, func() {
		Convey("Then identical strings score 1.0", func() {
			So(text.Similarity("dracula", "dracula"), ShouldEqual, 1.0)
			So(text.Similarity("", ""), ShouldEqual, 1.0)
		})

		Convey("Then exactly one empty string scores 0.0", func() {
			So(text.Similarity("", "x"), ShouldEqual, 0.0)
			So(text.Similarity("x", ""), ShouldEqual, 0.0)
		})

		Convey("Then it is symmetric", func() {
			pairs := [][2]string{
				{"stephen king", "steve king"},
				{"dune", "dune messiah"},
				{"a", "b"},
			}
			for _, p := range pairs {
				So(text.Similarity(p[0], p[1]), ShouldEqual, text.Similarity(p[1], p[0]))
			}
		})

		Convey("Then scores stay inside [0,1]", func() {
			So(text.Similarity("abc", "xyzw"), ShouldBeGreaterThanOrEqualTo, 0.0)
			So(text.Similarity("abc", "xyzw"), ShouldBeLessThanOrEqualTo, 1.0)
		})

		Convey("Then a single substitution over ten runes costs 0.1", func() {
			So(text.Similarity("goldenhand", "goldenhand"), ShouldEqual, 1.0)
			So(text.Similarity("goldenhand", "goldenhant"), ShouldAlmostEqual, 0.9, 1e-9)
		})
	})
}
