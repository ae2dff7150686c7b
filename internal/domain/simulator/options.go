package simulator

import (
	"github.com/okian/libero/internal/domain/court"
	"github.com/okian/libero/pkg/logger"
)

// Option applies a configuration option to a simulation.
type Option func(*options)

type options struct {
	policy    court.SubstitutionPolicy
	log       logger.Logger
	sentinels map[string]struct{}
}

func newOptions(opts []Option) options {
	o := options{
		policy:    court.PolicyInherit,
		sentinels: map[string]struct{}{"": {}, "1": {}},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetOrNop().Named("simulator")
	}
	return o
}

// WithSubstitutionPolicy selects how substitutions move players on court.
func WithSubstitutionPolicy(p court.SubstitutionPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger sets the logger used for data-quality warnings.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithScorerSentinel replaces the scorer ids that mean "no scorer recorded".
// The empty id is always a sentinel.
func WithScorerSentinel(ids ...string) Option {
	return func(o *options) {
		o.sentinels = map[string]struct{}{"": {}}
		for _, id := range ids {
			o.sentinels[id] = struct{}{}
		}
	}
}
