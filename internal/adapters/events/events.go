// Package events assembles the community event feed from a local JSON file
// and a live sheet endpoint.
package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pixel-phantoms/hud/internal/domain/model"
	"github.com/pixel-phantoms/hud/pkg/logger"
)

const (
	defaultTimeout = 10 * time.Second
	statusApproved = "approved"
	statusPending  = "Pending"
)

// dateLayouts are tried in order when parsing an event date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Source loads and merges event listings.
type Source struct {
	localPath string
	apiURL    string
	http      *http.Client
	loc       *time.Location
	logger    logger.Logger
}

// NewSource creates an event source. With no path and no URL it yields nothing.
func NewSource(opts ...Option) *Source {
	s := &Source{
		http:   &http.Client{Timeout: defaultTimeout},
		loc:    time.UTC,
		logger: logger.Default().Named("events"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the merged feed sorted by date ascending. Local entries come
// first and approved sheet entries after them; a later entry replaces an
// earlier one with the same trimmed title. A failing side is skipped and its
// error returned alongside whatever the other side produced.
func (s *Source) Events(ctx context.Context) ([]model.Event, error) {
	var merged []model.Event
	var errs []error

	if s.localPath != "" {
		local, err := s.readLocal()
		if err != nil {
			s.logger.Warn(ctx, "local events unavailable", logger.String("path", s.localPath), logger.Error(err))
			errs = append(errs, err)
		}
		merged = append(merged, local...)
	}

	if s.apiURL != "" {
		live, err := s.fetchLive(ctx)
		if err != nil {
			s.logger.Warn(ctx, "live events unavailable", logger.Error(err))
			errs = append(errs, err)
		}
		merged = append(merged, approved(live)...)
	}

	out := s.normalize(merged)
	return out, errors.Join(errs...)
}

func (s *Source) readLocal() ([]model.Event, error) {
	f, err := os.Open(s.localPath)
	if err != nil {
		return nil, fmt.Errorf("opening local events: %w", err)
	}
	defer f.Close()
	return decodeList(f)
}

func (s *Source) fetchLive(ctx context.Context) ([]model.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating events request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return decodeList(resp.Body)
}

// Propose submits a new event to the sheet endpoint for review. The entry is
// always stored as pending; it only appears in the feed once approved there.
func (s *Source) Propose(ctx context.Context, e model.Event) error {
	if s.apiURL == "" {
		return ErrNoEndpoint
	}
	e.Title = strings.TrimSpace(e.Title)
	e.Date = strings.TrimSpace(e.Date)
	if e.Title == "" || e.Date == "" {
		return ErrInvalidEvent
	}
	e.Status = statusPending
	if e.Location == "" {
		e.Location = "TBD"
	}
	if e.Link == "" {
		e.Link = "#"
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding proposal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating proposal request: %w", err)
	}
	// Apps Script web apps only accept simple requests.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending proposal: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	s.logger.Info(ctx, "event proposed", logger.String("title", e.Title))
	return nil
}

// normalize dedupes by trimmed title (last wins, first position kept), parses
// dates and sorts ascending with undated entries last.
func (s *Source) normalize(in []model.Event) []model.Event {
	index := make(map[string]int, len(in))
	out := make([]model.Event, 0, len(in))
	for _, e := range in {
		key := strings.TrimSpace(e.Title)
		if key == "" {
			continue
		}
		e.Time = s.parseDate(e.Date)
		if i, ok := index[key]; ok {
			out[i] = e
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Time, out[j].Time
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.Before(b)
	})
	return out
}

func (s *Source) parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, s.loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Next returns the first event still running at now, treating each event as
// live until the end of its day. ok is false when none is left.
func Next(events []model.Event, now time.Time) (model.Event, bool) {
	for _, e := range events {
		if e.Time.IsZero() {
			continue
		}
		y, m, d := e.Time.Date()
		end := time.Date(y, m, d, 23, 59, 59, int(time.Millisecond*999), e.Time.Location())
		if end.After(now) {
			return e, true
		}
	}
	return model.Event{}, false
}

func approved(in []model.Event) []model.Event {
	out := make([]model.Event, 0, len(in))
	for _, e := range in {
		if strings.EqualFold(strings.TrimSpace(e.Status), statusApproved) {
			out = append(out, e)
		}
	}
	return out
}

// rawEvent tolerates sheet cells that arrive as numbers or booleans.
type rawEvent struct {
	Title       any `json:"title"`
	Date        any `json:"date"`
	Type        any `json:"type"`
	Location    any `json:"location"`
	Description any `json:"description"`
	Link        any `json:"link"`
	Status      any `json:"status"`
}

func decodeList(r io.Reader) ([]model.Event, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '[' {
		return nil, ErrNotAList
	}
	var rows []rawEvent
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	out := make([]model.Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Event{
			Title:       cell(r.Title),
			Date:        cell(r.Date),
			Type:        cell(r.Type),
			Location:    cell(r.Location),
			Description: cell(r.Description),
			Link:        cell(r.Link),
			Status:      cell(r.Status),
		})
	}
	return out, nil
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
