package app

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/foliolabs/folio/internal/domain/match"
	"github.com/foliolabs/folio/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCatalog sets the acquisition backend client. Required before Start.
func WithCatalog(c Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithWorkerCount sets the number of resolution workers. Zero or negative
// lets the pool pick a default.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		s.workerCount = n
	}
}

// WithQueueSize bounds the pending-request queue.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithInflightSize bounds the in-flight author/title guard.
func WithInflightSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.inflightSize = n
		}
	}
}

// WithOutcomeHistory bounds the retained outcome history.
func WithOutcomeHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.outcomeHistory = n
		}
	}
}

// WithResolverOptions forwards options to the resolver built on Start.
func WithResolverOptions(opts ...ResolverOption) Option {
	return func(s *Service) {
		s.resolverOpts = append(s.resolverOpts, opts...)
	}
}

// ResolverOption applies a configuration option to the Resolver.
type ResolverOption func(*Resolver)

// WithEnricher enables the pre-resolution metadata enrichment step.
func WithEnricher(e Enricher) ResolverOption {
	return func(r *Resolver) {
		r.enricher = e
	}
}

// WithMatcher sets a custom candidate matcher.
func WithMatcher(m *match.Matcher) ResolverOption {
	return func(r *Resolver) {
		if m != nil {
			r.matcher = m
		}
	}
}

// WithClock sets the clock used for settle polling. Tests inject a fake.
func WithClock(c clockwork.Clock) ResolverOption {
	return func(r *Resolver) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithSettlePolicy shapes the bounded backoff used while waiting for
// freshly created records to be indexed by the backend.
func WithSettlePolicy(initial time.Duration, multiplier float64, maxAttempts int) ResolverOption {
	return func(r *Resolver) {
		if initial > 0 {
			r.pollInitial = initial
		}
		if multiplier >= 1 {
			r.pollMultiplier = multiplier
		}
		if maxAttempts > 0 {
			r.pollMaxAttempts = maxAttempts
		}
	}
}

// WithResolverLogger sets a custom logger for the resolver.
func WithResolverLogger(l logger.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}
