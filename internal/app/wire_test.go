package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	service "github.com/pixel-phantoms/hud/internal/app"
	"github.com/pixel-phantoms/hud/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFromConfig(t *testing.T) {
	Convey("Given configured upstreams served locally", t, func() {
		gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") != "1" {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(`[{"number":1,"user":{"login":"alice"},"merged_at":"2025-05-30T00:00:00Z","labels":[{"name":"level 2"}]}]`))
		}))
		defer gh.Close()

		dir := t.TempDir()
		csvPath := filepath.Join(dir, "attendance.csv")
		So(os.WriteFile(csvPath, []byte("GitHubUsername,Date,EventName\nbob,2025-01-01,Hack Night\n"), 0o600), ShouldBeNil)

		cfg := config.New()
		cfg.GitHubAPIBase = gh.URL
		cfg.GitHubRequestsPerSec = 0
		cfg.AttendanceCSVPath = csvPath
		cfg.EventsJSONPath = filepath.Join(dir, "missing.json")
		cfg.RefreshSchedule = ""

		svc, err := service.FromConfig(cfg, service.WithClock(clock))
		So(err, ShouldBeNil)

		Convey("When a refresh runs", func() {
			So(svc.Refresh(context.Background(), service.ReasonStartup), ShouldBeNil)

			Convey("Then both contributors are ranked", func() {
				top, err := svc.TopN(context.Background(), 10)
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 2)
				So(top[0].Login, ShouldEqual, "alice")
				So(top[1].Login, ShouldEqual, "bob")
			})
		})
	})

	Convey("Given an unknown attendance source", t, func() {
		cfg := config.New()
		cfg.AttendanceSource = "guess"

		_, err := service.FromConfig(cfg)
		So(err, ShouldNotBeNil)
	})
}
