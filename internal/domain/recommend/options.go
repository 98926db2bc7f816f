package recommend

import (
	"time"

	"github.com/okian/coachmatch/internal/domain/analytics"
)

// Option applies a configuration option to the Synthesizer.
type Option func(*Synthesizer)

// WithClock sets the clock used for days-since-last-session.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAnalyzer sets the analyzer used for summaries and anomalies.
func WithAnalyzer(a *analytics.Analyzer) Option {
	return func(s *Synthesizer) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithSuggestionLimit caps the number of suggested courses.
func WithSuggestionLimit(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.suggestionLimit = n
		}
	}
}
