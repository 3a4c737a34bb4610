// Package csvfeed loads the event attendance sheet from a file or URL.
package csvfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pixel-phantoms/hud/internal/domain/attendance"
	"github.com/pixel-phantoms/hud/pkg/logger"
)

const defaultTimeout = 10 * time.Second

// ErrUnexpectedStatus is returned when a remote sheet answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("attendance sheet returned unexpected status")

// Option applies a configuration option to the Source.
type Option func(*Source)

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Source) {
		if hc != nil {
			s.http = hc
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

// Source reads GitHubUsername,Date,EventName rows from location, which is
// either a local path or an http(s) URL.
type Source struct {
	location string
	http     *http.Client
	logger   logger.Logger
}

// New creates a Source. An empty location yields empty attendance.
func New(location string, opts ...Option) *Source {
	s := &Source{
		location: strings.TrimSpace(location),
		http:     &http.Client{Timeout: defaultTimeout},
		logger:   logger.Default().Named("attendance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attendance loads and parses the sheet.
func (s *Source) Attendance(ctx context.Context) (attendance.Result, error) {
	if s.location == "" {
		return attendance.Empty(), nil
	}

	rc, err := s.open(ctx)
	if err != nil {
		return attendance.Empty(), err
	}
	defer rc.Close()

	res, err := attendance.ParseCSV(rc)
	if err != nil {
		return attendance.Empty(), fmt.Errorf("parsing attendance sheet: %w", err)
	}
	s.logger.Debug(ctx, "attendance loaded",
		logger.Int("identities", len(res.Attendance)),
		logger.Int("events", res.Stats.TotalEvents),
	)
	return res, nil
}

func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	if !isRemote(s.location) {
		f, err := os.Open(s.location)
		if err != nil {
			return nil, fmt.Errorf("opening attendance sheet: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, fmt.Errorf("creating attendance request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching attendance sheet: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.Body, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
