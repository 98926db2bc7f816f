package api

import "github.com/okian/coachmatch/pkg/logger"

// Option configures a Server.
type Option func(*Server)

// WithRateLimit caps requests per client IP per minute. Zero disables it.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute >= 0 {
			s.ratePerMinute = perMinute
		}
	}
}

// WithMaxLimit rejects ranking limits above n.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithMaxBodyBytes bounds request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
