package github_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/pixel-phantoms/hud/internal/adapters/github"
	. "github.com/smartystreets/goconvey/convey"
)

const pullTmpl = `{"number":%d,"user":{"login":"%s","avatar_url":"https://avatars/%s"},"merged_at":%s,"labels":[{"name":"level 2"}]}`

func pull(n int, login string, merged bool) string {
	mergedAt := "null"
	if merged {
		mergedAt = `"2025-05-01T10:00:00Z"`
	}
	return fmt.Sprintf(pullTmpl, n, login, login, mergedAt)
}

// pagedServer serves pages[i] for page=i+1 and [] beyond.
func pagedServer(pages map[int]string, hits *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		body, ok := pages[page]
		if !ok {
			body = "[]"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestMergedPullRequests(t *testing.T) {
	ctx := context.Background()

	Convey("Given a repository with two pages of pull requests", t, func() {
		var hits int32
		srv := pagedServer(map[int]string{
			1: "[" + pull(1, "alice", true) + "," + pull(2, "bob", false) + "]",
			2: "[" + pull(2, "bob", false) + "," + pull(3, "carol", true) + "]",
		}, &hits)
		defer srv.Close()

		c, err := github.NewClient("sayeeg-11", "Pixel_Phantoms", github.WithBaseURL(srv.URL), github.WithHTTPClient(srv.Client()))
		So(err, ShouldBeNil)

		prs, err := c.MergedPullRequests(ctx)

		Convey("Then every page is read until the empty one", func() {
			So(err, ShouldBeNil)
			So(atomic.LoadInt32(&hits), ShouldEqual, 3)
		})

		Convey("Then duplicate numbers across pages are dropped", func() {
			So(prs, ShouldHaveLength, 3)
			So(prs[2].Number, ShouldEqual, 3)
		})

		Convey("Then fields are mapped onto the model", func() {
			So(prs[0].Author, ShouldEqual, "alice")
			So(prs[0].AvatarURL, ShouldEqual, "https://avatars/alice")
			So(prs[0].Merged(), ShouldBeTrue)
			So(prs[0].Labels, ShouldResemble, []string{"level 2"})
			So(prs[1].Merged(), ShouldBeFalse)
		})
	})

	Convey("Given more pages than the cap", t, func() {
		var hits int32
		pages := map[int]string{}
		for i := 1; i <= 5; i++ {
			pages[i] = "[" + pull(i, "dave", true) + "]"
		}
		srv := pagedServer(pages, &hits)
		defer srv.Close()

		c, _ := github.NewClient("o", "r", github.WithBaseURL(srv.URL), github.WithMaxPages(2))
		prs, err := c.MergedPullRequests(ctx)

		Convey("Then only the capped number of pages is requested", func() {
			So(err, ShouldBeNil)
			So(prs, ShouldHaveLength, 2)
			So(atomic.LoadInt32(&hits), ShouldEqual, 2)
		})
	})

	Convey("Given the API rate limits on the second page", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "1" {
				_, _ = w.Write([]byte("[" + pull(7, "erin", true) + "]"))
				return
			}
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		c, _ := github.NewClient("o", "r", github.WithBaseURL(srv.URL))
		prs, err := c.MergedPullRequests(ctx)

		Convey("Then the first page is kept and the rate limit is reported", func() {
			So(errors.Is(err, github.ErrRateLimited), ShouldBeTrue)
			So(prs, ShouldHaveLength, 1)
		})
	})

	Convey("Given the API fails on the first page", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c, _ := github.NewClient("o", "r", github.WithBaseURL(srv.URL))
		prs, err := c.MergedPullRequests(ctx)

		Convey("Then nothing is returned with a status error", func() {
			So(errors.Is(err, github.ErrUnexpectedStatus), ShouldBeTrue)
			So(prs, ShouldBeEmpty)
		})
	})

	Convey("Given a token and a page size", t, func() {
		var auth, accept, query string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			accept = r.Header.Get("Accept")
			query = r.URL.RawQuery
			_, _ = w.Write([]byte("[]"))
		}))
		defer srv.Close()

		c, _ := github.NewClient("o", "r", github.WithBaseURL(srv.URL), github.WithToken("s3cret"), github.WithPerPage(50), github.WithRequestsPerSecond(100))
		_, err := c.MergedPullRequests(ctx)

		Convey("Then the request carries them", func() {
			So(err, ShouldBeNil)
			So(auth, ShouldEqual, "Bearer s3cret")
			So(accept, ShouldEqual, "application/vnd.github+json")
			So(query, ShouldContainSubstring, "per_page=50")
			So(query, ShouldContainSubstring, "state=all")
		})
	})

	Convey("Given a cancelled context", t, func() {
		c, _ := github.NewClient("o", "r", github.WithBaseURL("http://127.0.0.1:1"), github.WithRequestsPerSecond(0.001))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := c.MergedPullRequests(cctx)

		So(err, ShouldNotBeNil)
	})

	Convey("Given no repository", t, func() {
		_, err := github.NewClient("", "r")
		So(errors.Is(err, github.ErrMissingRepo), ShouldBeTrue)
	})
}
