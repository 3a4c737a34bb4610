package events

import (
	"net/http"
	"time"

	"github.com/pixel-phantoms/hud/pkg/logger"
)

// Option applies a configuration option to the Source.
type Option func(*Source)

// WithLocalPath sets the JSON file holding the base event list.
func WithLocalPath(path string) Option {
	return func(s *Source) {
		s.localPath = path
	}
}

// WithAPIURL sets the sheet endpoint returning live events.
func WithAPIURL(u string) Option {
	return func(s *Source) {
		s.apiURL = u
	}
}

// WithHTTPClient sets the client used for the sheet endpoint.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Source) {
		if hc != nil {
			s.http = hc
		}
	}
}

// WithLocation sets the zone dates without an offset are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *Source) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}
