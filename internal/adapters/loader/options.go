package loader

import "github.com/okian/freethrow/pkg/logger"

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithPattern sets the glob used to find trial documents.
func WithPattern(pattern string) Option {
	return func(l *Loader) {
		if pattern != "" {
			l.pattern = pattern
		}
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}
