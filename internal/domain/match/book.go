package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/foliolabs/folio/internal/domain/text"
	"github.com/foliolabs/folio/internal/domain/title"
)

// Book rule weights.
const (
	exactTitleBonus     = 200
	coreTitleBonus      = 150
	exactAuthorBonus    = 150
	poorTitlePenalty    = 350
	bioOfAuthorPenalty  = 300
	bioPhrasePenalty    = 150
	authorInTitle       = 100
	byBiographerPenalty = 200
	oldClassicBonus     = 50
	midCenturyBonus     = 25
	recentPenalty       = 15
	shortIconicBonus    = 40
	seriesPenalty       = 40

	poorTitleSim    = 0.25
	shortIconicSim  = 0.5
	shortTitleWords = 3
	minCoreTitleLen = 3
	oldClassicYear  = 1940
	midCenturyYear  = 1980
	recentYear      = 2010
)

// biographyPhrases mark titles that are ABOUT an author or a work rather
// than the work itself.
var biographyPhrases = []string{
	"biography", "life of", "lives of", "living",
	"study of", "studies", "criticism", "critical",
	"guide to", "companion",
}

// bookTarget carries the requested title and author pre-normalized once.
type bookTarget struct {
	rawTitle   string
	coreTitle  string
	normAuthor string
}

// bookFacts derives the per-candidate values the book rules share.
type bookFacts struct {
	cand       Candidate
	lowerTitle string  // lowercased candidate title
	titleSim   float64 // max of full-vs-full and core-vs-core similarity
	authorSim  float64
	normAuthor string // normalized candidate author
}

func newBookTarget(targetTitle, targetAuthor string) bookTarget {
	return bookTarget{
		rawTitle:   strings.TrimSpace(targetTitle),
		coreTitle:  title.Core(targetTitle),
		normAuthor: text.Normalize(targetAuthor),
	}
}

func newBookFacts(t bookTarget, c Candidate) bookFacts {
	sim := title.Similarity(t.rawTitle, c.Name)
	if coreSim := title.Similarity(t.coreTitle, title.Core(c.Name)); coreSim > sim {
		sim = coreSim
	}
	normAuthor := text.Normalize(c.Author)
	return bookFacts{
		cand:       c,
		lowerTitle: strings.ToLower(c.Name),
		titleSim:   sim,
		authorSim:  text.Similarity(t.normAuthor, normAuthor),
		normAuthor: normAuthor,
	}
}

type bookRule func(t bookTarget, f bookFacts) (int, string)

var bookRules = []bookRule{
	bookTitleSimilarity,
	bookExactTitle,
	bookPoorTitleGuard,
	bookBiographyOfAuthor,
	bookBiographyPhrase,
	bookAuthorInTitle,
	bookByBiographerPattern,
	bookAuthorSimilarity,
	bookExactAuthor,
	bookPublicationYear,
	bookShortIconicTitle,
	bookSeriesVolume,
	bookRating,
}

func bookTitleSimilarity(t bookTarget, f bookFacts) (int, string) {
	delta := int(math.Round(150 * f.titleSim))
	return delta, fmt.Sprintf("title similarity %.2f", f.titleSim)
}

func bookExactTitle(t bookTarget, f bookFacts) (int, string) {
	if strings.EqualFold(t.rawTitle, strings.TrimSpace(f.cand.Name)) {
		return exactTitleBonus, "exact title match"
	}
	core := title.Core(f.cand.Name)
	if len(t.coreTitle) > minCoreTitleLen && strings.EqualFold(t.coreTitle, core) {
		return coreTitleBonus, "core title match"
	}
	return 0, ""
}

// bookPoorTitleGuard is the dominant disqualifier: nothing else should be
// able to drag a textually unrelated title over the floor.
func bookPoorTitleGuard(t bookTarget, f bookFacts) (int, string) {
	if f.titleSim < poorTitleSim {
		return -poorTitlePenalty, fmt.Sprintf("poor title similarity %.2f", f.titleSim)
	}
	return 0, ""
}

func bookBiographyOfAuthor(t bookTarget, f bookFacts) (int, string) {
	if t.normAuthor == "" {
		return 0, ""
	}
	kw := containsAny(f.lowerTitle, biographyPhrases)
	if kw != "" && strings.Contains(text.Normalize(f.cand.Name), t.normAuthor) {
		return -bioOfAuthorPenalty, "looks like a biography of the requested author"
	}
	return 0, ""
}

func bookBiographyPhrase(t bookTarget, f bookFacts) (int, string) {
	if kw := containsAny(f.lowerTitle, biographyPhrases); kw != "" {
		return -bioPhrasePenalty, "title mentions " + kw
	}
	return 0, ""
}

func bookAuthorInTitle(t bookTarget, f bookFacts) (int, string) {
	if t.normAuthor == "" {
		return 0, ""
	}
	if strings.Contains(text.Normalize(f.cand.Name), t.normAuthor) {
		return -authorInTitle, "requested author named in the title"
	}
	return 0, ""
}

// bookByBiographerPattern penalizes "<subject> by <biographer>" titles where
// the subject segment names the requested author.
func bookByBiographerPattern(t bookTarget, f bookFacts) (int, string) {
	if t.normAuthor == "" {
		return 0, ""
	}
	idx := strings.LastIndex(f.lowerTitle, " by ")
	if idx < 0 {
		return 0, ""
	}
	subject := text.Normalize(f.lowerTitle[:idx])
	if strings.Contains(subject, t.normAuthor) {
		return -byBiographerPenalty, "title names the requested author before \"by\""
	}
	return 0, ""
}

func bookAuthorSimilarity(t bookTarget, f bookFacts) (int, string) {
	delta := int(math.Round(120 * f.authorSim))
	return delta, fmt.Sprintf("author similarity %.2f", f.authorSim)
}

func bookExactAuthor(t bookTarget, f bookFacts) (int, string) {
	if t.normAuthor != "" && t.normAuthor == f.normAuthor {
		return exactAuthorBonus, "exact author match"
	}
	return 0, ""
}

func bookPublicationYear(t bookTarget, f bookFacts) (int, string) {
	if f.cand.ReleaseDate.IsZero() {
		return 0, ""
	}
	year := f.cand.ReleaseDate.Year()
	switch {
	case year < oldClassicYear:
		return oldClassicBonus, fmt.Sprintf("published %d", year)
	case year < midCenturyYear:
		return midCenturyBonus, fmt.Sprintf("published %d", year)
	case year > recentYear:
		return -recentPenalty, fmt.Sprintf("published %d", year)
	}
	return 0, ""
}

// bookShortIconicTitle rewards short title pairs that already agree well;
// "Dune" vs "Dune" should not lose to longer decorated variants.
func bookShortIconicTitle(t bookTarget, f bookFacts) (int, string) {
	if f.titleSim < shortIconicSim {
		return 0, ""
	}
	targetWords := len(strings.Fields(t.coreTitle))
	candWords := len(strings.Fields(title.Core(f.cand.Name)))
	if targetWords > 0 && targetWords <= shortTitleWords && candWords > 0 && candWords <= shortTitleWords {
		return shortIconicBonus, "short titles agree"
	}
	return 0, ""
}

// bookSeriesVolume penalizes series volumes when the request looks like a
// standalone classic.
func bookSeriesVolume(t bookTarget, f bookFacts) (int, string) {
	if f.cand.SeriesTitle == "" {
		return 0, ""
	}
	if len(strings.Fields(t.rawTitle)) <= shortTitleWords {
		return -seriesPenalty, "series volume for a short requested title"
	}
	return 0, ""
}

func bookRating(t bookTarget, f bookFacts) (int, string) {
	if f.cand.Rating <= 0 {
		return 0, ""
	}
	delta := int(math.Round(4 * f.cand.Rating))
	if delta > maxRatingBonus {
		delta = maxRatingBonus
	}
	return delta, fmt.Sprintf("rating %.1f", f.cand.Rating)
}

// ScoreBook folds the book rules for a single candidate.
func (m *Matcher) ScoreBook(c Candidate, targetTitle, targetAuthor string) Scored {
	return scoreBook(newBookTarget(targetTitle, targetAuthor), c)
}

func scoreBook(t bookTarget, c Candidate) Scored {
	f := newBookFacts(t, c)
	s := Scored{Candidate: c, TitleSim: f.titleSim}
	for _, rule := range bookRules {
		delta, reason := rule(t, f)
		if delta == 0 {
			continue
		}
		s.Score += delta
		s.Reasons = append(s.Reasons, fmt.Sprintf("%+d %s", delta, reason))
	}
	return s
}

// BestBook scores every candidate against the requested title and author.
// The winner must clear both the score floor and the title similarity
// floor; either miss means nil.
func (m *Matcher) BestBook(candidates []Candidate, targetTitle, targetAuthor string) *Scored {
	if len(candidates) == 0 {
		return nil
	}
	t := newBookTarget(targetTitle, targetAuthor)
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, scoreBook(t, c))
	}

	best := m.selectBest(scored, "book", targetTitle)
	if best == nil {
		return nil
	}
	if best.TitleSim < m.minTitleSim {
		return nil
	}
	return best
}
