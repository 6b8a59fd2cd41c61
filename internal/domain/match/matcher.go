package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/foliolabs/folio/pkg/logger"
)

// Default selection thresholds.
const (
	defaultMinScore    = 70  // floor for the winner's absolute score
	defaultMinTitleSim = 0.3 // floor for a book winner's title similarity
	defaultMargin      = 40  // winner-vs-runner-up gap below which we warn
	maxBookCountBonus  = 30  // cap for the author book-count nudge
	maxRatingBonus     = 20  // cap for the book popularity nudge
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithMinScore overrides the absolute score floor.
func WithMinScore(score int) Option {
	return func(m *Matcher) {
		if score > 0 {
			m.minScore = score
		}
	}
}

// WithMargin overrides the low-confidence margin between the top two.
func WithMargin(margin int) Option {
	return func(m *Matcher) {
		if margin > 0 {
			m.margin = margin
		}
	}
}

// WithLogger sets a custom logger for the matcher.
func WithLogger(l logger.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// Matcher selects the best author or book candidate for a target. It holds
// no per-call state; both Best* methods are safe for concurrent use.
type Matcher struct {
	minScore    int
	minTitleSim float64
	margin      int
	logger      logger.Logger
}

// New creates a Matcher with default thresholds.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		minScore:    defaultMinScore,
		minTitleSim: defaultMinTitleSim,
		margin:      defaultMargin,
		logger:      logger.Get().Named("match"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// selectBest orders scored candidates and applies threshold gating: the
// winner must clear the absolute score floor no matter how many candidates
// exist. A narrow margin over the runner-up is surfaced as a warning on the
// result, never as a rejection.
func (m *Matcher) selectBest(scored []Scored, kind, target string) *Scored {
	if len(scored) == 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	best := scored[0]
	if best.Score < m.minScore {
		m.logger.Debug(context.Background(), "best candidate below score floor",
			logger.String("kind", kind),
			logger.String("target", target),
			logger.String("candidate", best.Candidate.Name),
			logger.Int("score", best.Score),
			logger.Int("floor", m.minScore),
		)
		return nil
	}

	if len(scored) > 1 && best.Score-scored[1].Score < m.margin {
		best.Ambiguous = true
		m.logger.Warn(context.Background(), "low-confidence match: narrow margin over runner-up",
			logger.String("kind", kind),
			logger.String("target", target),
			logger.String("winner", best.Candidate.Name),
			logger.Int("winnerScore", best.Score),
			logger.String("runnerUp", scored[1].Candidate.Name),
			logger.Int("runnerUpScore", scored[1].Score),
		)
	}

	m.logger.Debug(context.Background(), "selected candidate",
		logger.String("kind", kind),
		logger.String("target", target),
		logger.String("winner", best.Candidate.Name),
		logger.Int("score", best.Score),
		logger.String("trail", fmt.Sprintf("%v", best.Reasons)),
	)
	return &best
}
