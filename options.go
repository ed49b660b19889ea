package watermarkit

import "github.com/go-kit/log"

// Option is a functional option for configuring a watermarking Service.
type Option func(*Service)

// WithLogger sets the diagnostics sink for the service. Logging is not part
// of the functional contract; the default logger discards everything.
func WithLogger(logger log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkerPool supplies a caller-owned pool used to render pages
// concurrently. The service never shuts the pool down. Without a pool,
// pages are rendered sequentially on the calling goroutine.
func WithWorkerPool(pool Pool) Option {
	return func(s *Service) {
		s.pool = pool
	}
}

// WithFont replaces the default text face (Go Regular) with the given TTF
// data. The font is used for measuring, for rasterized rendering, and is
// embedded into the output document for vector overlays.
func WithFont(ttf []byte) Option {
	return func(s *Service) {
		if len(ttf) > 0 {
			s.fontTTF = ttf
		}
	}
}
