package analytics

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithZThreshold sets the |z| above which a reading is an anomaly.
func WithZThreshold(z float64) Option {
	return func(a *Analyzer) {
		if z > 0 {
			a.zThreshold = z
		}
	}
}

// WithMinAnomalySessions sets how many sessions anomaly detection needs.
func WithMinAnomalySessions(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minAnomalySessions = n
		}
	}
}

// WithMinForecastSamples sets how much history a forecast needs.
func WithMinForecastSamples(n int) Option {
	return func(a *Analyzer) {
		if n > 1 {
			a.minForecastSamples = n
		}
	}
}

// WithMaxHorizon caps the forecast horizon in days.
func WithMaxHorizon(days int) Option {
	return func(a *Analyzer) {
		if days > 0 {
			a.maxHorizon = days
		}
	}
}
