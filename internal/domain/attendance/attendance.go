// Package attendance ingests event-attendance data for the scoring engine.
//
// Two strategies exist and are never blended: a CSV roster of who attended
// what (authoritative when present), and an estimate derived from pull request
// counts and the number of published events.
package attendance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pixel-phantoms/hud/internal/domain/model"
)

// Strategy selects where attendance numbers come from.
type Strategy string

// Strategies.
const (
	StrategyCSV     Strategy = "csv"
	StrategyDerived Strategy = "derived"
)

// ErrUnknownStrategy is returned by ParseStrategy for unsupported names.
var ErrUnknownStrategy = errors.New("unknown attendance strategy")

// ParseStrategy validates a configured strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyCSV:
		return StrategyCSV, nil
	case StrategyDerived:
		return StrategyDerived, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Result is a parsed attendance roster.
type Result struct {
	Attendance model.Attendance
	Stats      model.EventStats
}

// Empty returns a Result with no attendance.
func Empty() Result {
	return Result{Attendance: model.Attendance{}}
}

// ParseCSV reads rows of GitHubUsername,Date,EventName. The first row is a
// header. Rows with fewer than three columns or an empty username or event
// name are skipped.
func ParseCSV(r io.Reader) (Result, error) {
	res := Empty()
	if r == nil {
		return res, nil
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	events := make(map[string]struct{})
	header := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return res, fmt.Errorf("read attendance csv: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(row) < 3 {
			continue
		}
		user := strings.TrimSpace(row[0])
		event := strings.TrimSpace(row[2])
		if user == "" || event == "" {
			continue
		}
		res.Attendance[user]++
		events[event] = struct{}{}
		res.Stats.TotalAttendance++
	}
	res.Stats.TotalEvents = len(events)
	return res, nil
}

// Derive estimates attendance as min(floor(prCount/2), totalEvents) for every
// author. Authors whose estimate is zero are left out.
func Derive(prCounts map[string]int, totalEvents int) Result {
	res := Empty()
	res.Stats.TotalEvents = totalEvents
	if totalEvents <= 0 {
		return res
	}
	for login, n := range prCounts {
		est := min(n/2, totalEvents)
		if est <= 0 {
			continue
		}
		res.Attendance[login] = est
		res.Stats.TotalAttendance += est
	}
	return res
}
