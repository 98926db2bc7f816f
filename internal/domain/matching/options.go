package matching

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the maximum points each factor contributes. Non-positive
// weights are ignored and keep their defaults.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w.Category > 0 {
			s.weights.Category = w.Category
		}
		if w.Experience > 0 {
			s.weights.Experience = w.Experience
		}
		if w.Text > 0 {
			s.weights.Text = w.Text
		}
		if w.Rating > 0 {
			s.weights.Rating = w.Rating
		}
	}
}

// RankerOption applies a configuration option to the Ranker.
type RankerOption func(*Ranker)

// WithScorer sets the scorer used for ranking.
func WithScorer(s *Scorer) RankerOption {
	return func(r *Ranker) {
		if s != nil {
			r.scorer = s
		}
	}
}

// WithDefaultLimit sets the result size used when callers pass limit <= 0.
func WithDefaultLimit(n int) RankerOption {
	return func(r *Ranker) {
		if n > 0 {
			r.defaultLimit = n
		}
	}
}

// WithCourseLimit sets the default result size for course audiences.
func WithCourseLimit(n int) RankerOption {
	return func(r *Ranker) {
		if n > 0 {
			r.courseLimit = n
		}
	}
}

// WithMaxLimit caps any requested result size.
func WithMaxLimit(n int) RankerOption {
	return func(r *Ranker) {
		if n > 0 {
			r.maxLimit = n
		}
	}
}
