package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/foliolabs/folio/internal/domain/text"
)

// Author rule weights.
const (
	exactNameBonus       = 300
	allTokensBonus       = 150
	lastTokenBonus       = 120
	firstTokenBonus      = 80
	overviewPenalty      = 100
	genrePenalty         = 150
	firstNameOnlyPenalty = 150
	weakNamePenalty      = 250
	mismatchPenalty      = 500

	weakNameSim      = 0.3
	catastrophicSim  = 0.5
	minBonusTokenLen = 1 // tokens must be longer than this for the all-tokens check
)

// biographyKeywords mark author records that describe someone writing ABOUT
// an author rather than the author themselves.
var biographyKeywords = []string{
	"biography", "biographer", "biographic",
	"critic", "criticism", "critical",
	"studies", "study of", "analysis",
	"commentator", "historian",
	"introduction by", "afterword by",
}

// authorTarget carries the requested name pre-normalized once per call.
type authorTarget struct {
	norm   string
	tokens []string
}

// authorFacts derives everything the rules share about one candidate.
// All fields are deterministic functions of (target, candidate).
type authorFacts struct {
	cand      Candidate
	norm      string
	tokens    []string
	sim       float64 // edit-distance similarity of the normalized names
	matching  int     // target tokens also present among candidate tokens
	allTokens bool    // every target token longer than one rune is present
}

func newAuthorTarget(name string) authorTarget {
	norm := text.Normalize(name)
	return authorTarget{norm: norm, tokens: text.Tokens(norm)}
}

func newAuthorFacts(t authorTarget, c Candidate) authorFacts {
	norm := text.Normalize(c.Name)
	tokens := text.Tokens(norm)

	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}

	matching := 0
	allLong := len(t.tokens) > 1
	for _, tok := range t.tokens {
		if _, ok := set[tok]; ok {
			matching++
		} else if len(tok) > minBonusTokenLen {
			allLong = false
		}
	}

	return authorFacts{
		cand:      c,
		norm:      norm,
		tokens:    tokens,
		sim:       text.Similarity(t.norm, norm),
		matching:  matching,
		allTokens: allLong,
	}
}

// authorRule scores one aspect of a candidate. A zero delta means the rule
// did not fire and leaves no trace in the reason trail.
type authorRule func(t authorTarget, f authorFacts) (int, string)

// authorRules is evaluated in order; the order fixes the reason trail only.
var authorRules = []authorRule{
	authorNameSimilarity,
	authorExactName,
	authorAllTokens,
	authorLastToken,
	authorFirstToken,
	authorTokenRatio,
	authorBookCount,
	authorRating,
	authorOverviewKeywords,
	authorGenreKeywords,
	authorFirstNameOnlyGuard,
	authorWeakSimilarityGuard,
	authorMismatchGuard,
}

func authorNameSimilarity(t authorTarget, f authorFacts) (int, string) {
	delta := int(math.Round(100 * f.sim))
	return delta, fmt.Sprintf("name similarity %.2f", f.sim)
}

func authorExactName(t authorTarget, f authorFacts) (int, string) {
	if t.norm != "" && t.norm == f.norm {
		return exactNameBonus, "exact name match"
	}
	return 0, ""
}

func authorAllTokens(t authorTarget, f authorFacts) (int, string) {
	if f.allTokens {
		return allTokensBonus, "all name tokens present"
	}
	return 0, ""
}

func authorLastToken(t authorTarget, f authorFacts) (int, string) {
	if len(t.tokens) == 0 || len(f.tokens) == 0 {
		return 0, ""
	}
	if t.tokens[len(t.tokens)-1] == f.tokens[len(f.tokens)-1] {
		return lastTokenBonus, "surname match"
	}
	return 0, ""
}

func authorFirstToken(t authorTarget, f authorFacts) (int, string) {
	if len(t.tokens) == 0 || len(f.tokens) == 0 {
		return 0, ""
	}
	if t.tokens[0] == f.tokens[0] {
		return firstTokenBonus, "first name match"
	}
	return 0, ""
}

func authorTokenRatio(t authorTarget, f authorFacts) (int, string) {
	total := len(t.tokens)
	if len(f.tokens) > total {
		total = len(f.tokens)
	}
	if total == 0 {
		return 0, ""
	}
	delta := int(math.Round(120 * float64(f.matching) / float64(total)))
	return delta, fmt.Sprintf("%d/%d tokens match", f.matching, total)
}

func authorBookCount(t authorTarget, f authorFacts) (int, string) {
	if f.cand.BookCount <= 0 {
		return 0, ""
	}
	delta := 2 * f.cand.BookCount
	if delta > maxBookCountBonus {
		delta = maxBookCountBonus
	}
	return delta, fmt.Sprintf("%d books in catalog", f.cand.BookCount)
}

func authorRating(t authorTarget, f authorFacts) (int, string) {
	if f.cand.Rating <= 0 {
		return 0, ""
	}
	return int(math.Round(5 * f.cand.Rating)), fmt.Sprintf("rating %.1f", f.cand.Rating)
}

func authorOverviewKeywords(t authorTarget, f authorFacts) (int, string) {
	if kw := containsAny(strings.ToLower(f.cand.Overview), biographyKeywords); kw != "" {
		return -overviewPenalty, "overview mentions " + kw
	}
	return 0, ""
}

func authorGenreKeywords(t authorTarget, f authorFacts) (int, string) {
	for _, g := range f.cand.Genres {
		if kw := containsAny(strings.ToLower(g), biographyKeywords); kw != "" {
			return -genrePenalty, "genre mentions " + kw
		}
	}
	return 0, ""
}

// authorFirstNameOnlyGuard catches the classic false positive where only a
// shared first name lines up: "Stephen King" vs "Stephen Fry".
func authorFirstNameOnlyGuard(t authorTarget, f authorFacts) (int, string) {
	if f.matching != 1 || len(t.tokens) <= 1 || len(f.tokens) == 0 {
		return 0, ""
	}
	if t.tokens[0] == f.tokens[0] && t.tokens[len(t.tokens)-1] != f.tokens[len(f.tokens)-1] {
		return -firstNameOnlyPenalty, "only the first name matches"
	}
	return 0, ""
}

func authorWeakSimilarityGuard(t authorTarget, f authorFacts) (int, string) {
	if f.sim < weakNameSim {
		return -weakNamePenalty, fmt.Sprintf("weak name similarity %.2f", f.sim)
	}
	return 0, ""
}

func authorMismatchGuard(t authorTarget, f authorFacts) (int, string) {
	if f.sim < catastrophicSim && !f.allTokens && f.matching == 0 {
		return -mismatchPenalty, "no token overlap and low similarity"
	}
	return 0, ""
}

// ScoreAuthor folds the author rules for a single candidate. Exposed so the
// weight table can be exercised rule-by-rule in tests and audit tooling.
func (m *Matcher) ScoreAuthor(c Candidate, targetName string) Scored {
	t := newAuthorTarget(targetName)
	return scoreAuthor(t, c)
}

func scoreAuthor(t authorTarget, c Candidate) Scored {
	f := newAuthorFacts(t, c)
	s := Scored{Candidate: c}
	for _, rule := range authorRules {
		delta, reason := rule(t, f)
		if delta == 0 {
			continue
		}
		s.Score += delta
		s.Reasons = append(s.Reasons, fmt.Sprintf("%+d %s", delta, reason))
	}
	return s
}

// BestAuthor scores every candidate against the requested name and returns
// the winner, or nil when no candidate clears the score floor.
func (m *Matcher) BestAuthor(candidates []Candidate, targetName string) *Scored {
	if len(candidates) == 0 {
		return nil
	}
	t := newAuthorTarget(targetName)
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, scoreAuthor(t, c))
	}
	return m.selectBest(scored, "author", targetName)
}

// containsAny returns the first needle contained in s, or "".
func containsAny(s string, needles []string) string {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return n
		}
	}
	return ""
}
