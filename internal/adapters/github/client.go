// Package github reads merged pull requests from the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pixel-phantoms/hud/internal/domain/dedupe"
	"github.com/pixel-phantoms/hud/internal/domain/model"
	"github.com/pixel-phantoms/hud/pkg/logger"
	"github.com/pixel-phantoms/hud/pkg/metrics"
	"golang.org/x/time/rate"
)

// Defaults.
const (
	DefaultBaseURL  = "https://api.github.com"
	defaultMaxPages = 3
	defaultPerPage  = 100
	maxPerPage      = 100
	defaultTimeout  = 15 * time.Second
	userAgent       = "pixel-phantoms-hud"
	acceptHeader    = "application/vnd.github+json"
)

// pullJSON mirrors the fields of a GitHub pull request we read.
type pullJSON struct {
	Number int `json:"number"`
	User   *struct {
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user"`
	MergedAt *time.Time `json:"merged_at"`
	Labels   []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

func (p pullJSON) toModel() model.PullRequest {
	pr := model.PullRequest{Number: p.Number, MergedAt: p.MergedAt}
	if p.User != nil {
		pr.Author = p.User.Login
		pr.AvatarURL = p.User.AvatarURL
	}
	pr.Labels = make([]string, 0, len(p.Labels))
	for _, l := range p.Labels {
		pr.Labels = append(pr.Labels, l.Name)
	}
	return pr
}

// Client pages through a repository's pull requests.
type Client struct {
	owner, repo string
	baseURL     string
	token       string
	maxPages    int
	perPage     int
	http        *http.Client
	limiter     *rate.Limiter
	newDeduper  func() dedupe.Deduper
	logger      logger.Logger
}

// NewClient creates a client for owner/repo.
func NewClient(owner, repo string, opts ...Option) (*Client, error) {
	if owner == "" || repo == "" {
		return nil, ErrMissingRepo
	}
	c := &Client{
		owner:    owner,
		repo:     repo,
		baseURL:  DefaultBaseURL,
		maxPages: defaultMaxPages,
		perPage:  defaultPerPage,
		http:     &http.Client{Timeout: defaultTimeout},
		limiter:  rate.NewLimiter(rate.Inf, 1),
		newDeduper: func() dedupe.Deduper {
			return dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		},
		logger: logger.Default().Named("github"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// MergedPullRequests reads up to maxPages pages of pull requests (all states;
// the scoring engine filters unmerged ones). It stops at the first empty page,
// non-2xx response or transport error and returns whatever was gathered before
// it, together with the error that ended the walk, if any.
func (c *Client) MergedPullRequests(ctx context.Context) ([]model.PullRequest, error) {
	seen := c.newDeduper()
	var out []model.PullRequest

	for page := 1; page <= c.maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return out, fmt.Errorf("waiting for rate limiter: %w", err)
		}

		batch, err := c.fetchPage(ctx, page)
		if err != nil {
			c.logger.Warn(ctx, "stopping pagination",
				logger.Int("page", page),
				logger.Int("gathered", len(out)),
				logger.Error(err),
			)
			return out, err
		}
		if len(batch) == 0 {
			break
		}
		metrics.RecordPullRequestsFetched(len(batch))

		for _, p := range batch {
			if p.Number != 0 && seen.SeenAndRecord(ctx, strconv.Itoa(p.Number)) {
				metrics.RecordDuplicatePullRequest()
				continue
			}
			out = append(out, p.toModel())
		}
	}

	c.logger.Debug(ctx, "pull requests fetched", logger.Int("count", len(out)))
	return out, nil
}

func (c *Client) pageURL(page int) string {
	q := url.Values{}
	q.Set("state", "all")
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("%s/repos/%s/%s/pulls?%s",
		c.baseURL, url.PathEscape(c.owner), url.PathEscape(c.repo), q.Encode())
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]pullJSON, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(page), nil)
	if err != nil {
		return nil, fmt.Errorf("creating pulls request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching pulls page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if isRateLimited(resp) {
		return nil, fmt.Errorf("%w: page %d", ErrRateLimited, page)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: page %d returned %d", ErrUnexpectedStatus, page, resp.StatusCode)
	}

	var batch []pullJSON
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("decoding pulls page %d: %w", page, err)
	}
	return batch, nil
}

func isRateLimited(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return resp.Header.Get("X-RateLimit-Remaining") == "0"
	default:
		return false
	}
}
