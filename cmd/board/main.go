// Command board runs a single leaderboard refresh and prints the result.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	service "github.com/pixel-phantoms/hud/internal/app"
	"github.com/pixel-phantoms/hud/internal/config"
	"github.com/pixel-phantoms/hud/internal/domain/roster"
	"github.com/pixel-phantoms/hud/internal/domain/types"
	"github.com/pixel-phantoms/hud/pkg/logger"
)

const defaultLimit = 20

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "board:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	repo   string
	csv    string
	source string
	token  string
	format string
	limit  int
	demo   bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("board", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.repo, "repo", "", "repository as owner/name (default from config)")
	fs.StringVar(&o.csv, "csv", "", "attendance CSV path or URL (default from config)")
	fs.StringVar(&o.source, "attendance", "", "attendance source: csv or derived")
	fs.StringVar(&o.token, "token", os.Getenv("GITHUB_TOKEN"), "GitHub token")
	fs.StringVar(&o.format, "format", "table", "output format: table or json")
	fs.IntVar(&o.limit, "limit", defaultLimit, "number of agents to print")
	fs.BoolVar(&o.demo, "demo", false, "print the demonstration roster without fetching")
	if err := fs.Parse(args); err != nil {
		return o, errUsage
	}
	if o.format != "table" && o.format != "json" {
		return o, fmt.Errorf("unknown format %q", o.format)
	}
	if o.limit < 1 {
		return o, errors.New("limit must be positive")
	}
	return o, nil
}

func (o options) apply(cfg *config.Config) error {
	if o.repo != "" {
		owner, name, ok := strings.Cut(o.repo, "/")
		if !ok || owner == "" || name == "" {
			return fmt.Errorf("repo must be owner/name, got %q", o.repo)
		}
		cfg.RepoOwner, cfg.RepoName = owner, name
	}
	if o.csv != "" {
		cfg.AttendanceCSVPath = o.csv
	}
	if o.source != "" {
		cfg.AttendanceSource = o.source
	}
	if o.token != "" {
		cfg.GitHubToken = o.token
	}
	cfg.RefreshSchedule = ""
	return cfg.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if err := logger.InitWithWriter(stderr); err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := o.apply(cfg); err != nil {
		return err
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	if o.demo {
		agents, stats := roster.Demo()
		entries := types.FromAgents(agents[:min(o.limit, len(agents))])
		st := service.Stats{
			Agents:          len(agents),
			TotalEvents:     stats.TotalEvents,
			TotalAttendance: stats.TotalAttendance,
			Demo:            true,
		}
		return write(stdout, o.format, entries, st)
	}

	svc, err := service.FromConfig(cfg)
	if err != nil {
		return err
	}
	if err := svc.Refresh(ctx, service.ReasonManual); err != nil {
		return err
	}

	entries, err := svc.TopN(ctx, o.limit)
	if err != nil {
		return err
	}
	return write(stdout, o.format, entries, svc.GetStats(ctx))
}

func write(w io.Writer, format string, entries []types.Entry, st service.Stats) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return printTable(w, entries, st)
}

func printTable(w io.Writer, entries []types.Entry, st service.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tAGENT\tXP\tPRS\tEVENTS\tCLASS\tSTATUS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			e.Rank, e.Login, humanize.Comma(int64(e.XP)), e.PRCount, e.EventsAttended, e.Class, e.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	note := ""
	switch {
	case st.Demo:
		note = " (demo data)"
	case st.Partial:
		note = " (partial)"
	}
	_, err := fmt.Fprintf(w, "\n%s agents, %s events, %s check-ins%s\n",
		humanize.Comma(int64(st.Agents)),
		humanize.Comma(int64(st.TotalEvents)),
		humanize.Comma(int64(st.TotalAttendance)),
		note)
	return err
}
