package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info", func() {
			Get().Info(ctx, "refresh done", String("reason", "startup"), Int("agents", 3), Duration("took", time.Second))

			Convey("Then the record carries message, fields and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "refresh done")
				So(out, ShouldContainSubstring, "reason=startup")
				So(out, ShouldContainSubstring, "agents=3")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When a named logger is used", func() {
			Named("github").Warn(ctx, "rate limited", Error(errors.New("403")))

			Convey("Then the component is attached", func() {
				So(buf.String(), ShouldContainSubstring, "component=github")
				So(buf.String(), ShouldContainSubstring, "error=403")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("ERROR"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Error(ctx, "shown")
			So(SetLevelString("info"), ShouldBeNil)

			Convey("Then lower records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "shown")
			})
		})

		Convey("When an unknown level is given", func() {
			err := SetLevelString("verbose")

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a nil writer", t, func() {
		So(InitWithWriter(nil), ShouldNotBeNil)
	})

	Convey("Given the discarding logger", t, func() {
		So(func() { Discard().Named("x").Debug(context.Background(), "nothing", Bool("ok", true)) }, ShouldNotPanic)
		So(Sync(), ShouldBeNil)
	})
}
