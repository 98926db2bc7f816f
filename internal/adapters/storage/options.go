package storage

import "github.com/okian/coachmatch/pkg/logger"

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used to report skipped records.
func WithLogger(l logger.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}
