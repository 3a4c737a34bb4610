package attendance_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/pixel-phantoms/hud/internal/domain/attendance"
	"github.com/pixel-phantoms/hud/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCSV(t *testing.T) {
	Convey("Given an attendance CSV", t, func() {
		csv := strings.Join([]string{
			"GitHubUsername,Date,EventName",
			"alice,2025-01-10,Hack Night",
			"bob, 2025-01-10, Hack Night",
			"alice,2025-02-01,Git Workshop",
			"carol,2025-02-01",
			",2025-02-01,Git Workshop",
			"dave,2025-02-01,",
			"",
		}, "\n")

		res, err := attendance.ParseCSV(strings.NewReader(csv))

		Convey("Then valid rows are counted per user", func() {
			So(err, ShouldBeNil)
			So(res.Attendance, ShouldResemble, model.Attendance{"alice": 2, "bob": 1})
		})

		Convey("And stats count distinct events and rows", func() {
			So(res.Stats.TotalEvents, ShouldEqual, 2)
			So(res.Stats.TotalAttendance, ShouldEqual, 3)
		})
	})

	Convey("Given an empty input", t, func() {
		res, err := attendance.ParseCSV(strings.NewReader(""))
		So(err, ShouldBeNil)
		So(res.Attendance, ShouldBeEmpty)
		So(res.Stats, ShouldResemble, model.EventStats{})

		res, err = attendance.ParseCSV(nil)
		So(err, ShouldBeNil)
		So(res.Attendance, ShouldNotBeNil)
	})

	Convey("Given a header-only CSV", t, func() {
		res, err := attendance.ParseCSV(strings.NewReader("GitHubUsername,Date,EventName\n"))
		So(err, ShouldBeNil)
		So(res.Attendance, ShouldBeEmpty)
	})
}

func TestDerive(t *testing.T) {
	Convey("Given pull request counts and a number of events", t, func() {
		res := attendance.Derive(map[string]int{"alice": 9, "bob": 3, "carol": 1}, 2)

		Convey("Then each estimate is half the PR count capped at the event total", func() {
			So(res.Attendance, ShouldResemble, model.Attendance{"alice": 2, "bob": 1})
			So(res.Stats.TotalEvents, ShouldEqual, 2)
			So(res.Stats.TotalAttendance, ShouldEqual, 3)
		})
	})

	Convey("Given no events", t, func() {
		res := attendance.Derive(map[string]int{"alice": 9}, 0)
		So(res.Attendance, ShouldBeEmpty)
	})
}

func TestParseStrategy(t *testing.T) {
	Convey("Given strategy names", t, func() {
		s, err := attendance.ParseStrategy("")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, attendance.StrategyCSV)

		s, err = attendance.ParseStrategy(" Derived ")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, attendance.StrategyDerived)

		_, err = attendance.ParseStrategy("blend")
		So(errors.Is(err, attendance.ErrUnknownStrategy), ShouldBeTrue)
	})
}
