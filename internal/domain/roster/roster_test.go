package roster_test

import (
	"testing"

	"github.com/pixel-phantoms/hud/internal/domain/model"
	"github.com/pixel-phantoms/hud/internal/domain/roster"
	"github.com/pixel-phantoms/hud/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func agentsWithXP(xps ...int) []model.Agent {
	out := make([]model.Agent, len(xps))
	for i, xp := range xps {
		out[i] = model.Agent{Login: string(rune('a' + i)), XP: xp, Rank: i + 1}
	}
	return out
}

func TestRoster(t *testing.T) {
	Convey("Given agents around the tier thresholds", t, func() {
		tiers := roster.Roster(agentsWithXP(5000, 4999, 2000, 1999))

		Convey("Then thresholds are inclusive", func() {
			So(tiers.Gold, ShouldHaveLength, 1)
			So(tiers.Silver, ShouldHaveLength, 2)
			So(tiers.Bronze, ShouldHaveLength, 1)
			So(tiers.Bronze[0].XP, ShouldEqual, 1999)
		})
	})

	Convey("Given no agents", t, func() {
		tiers := roster.Roster(nil)

		Convey("Then every tier is an empty list", func() {
			So(tiers.Gold, ShouldNotBeNil)
			So(tiers.Silver, ShouldBeEmpty)
		})
	})
}

func TestPhysics(t *testing.T) {
	Convey("Given the demo leaderboard", t, func() {
		agents, _ := roster.Demo()
		bars := roster.Physics(agents)

		Convey("Then bars are scaled from the top agent", func() {
			So(bars.Login, ShouldEqual, "Neo_One")
			So(bars.Velocity, ShouldEqual, 60)
			So(bars.Mass, ShouldEqual, 40)
			So(bars.Impact, ShouldEqual, 100)
		})
	})

	Convey("Given an agent beyond the scales", t, func() {
		bars := roster.Physics([]model.Agent{{Login: "x", Velocity: 400, Mass: 900}})

		Convey("Then bars are capped at 100", func() {
			So(bars.Velocity, ShouldEqual, 100)
			So(bars.Mass, ShouldEqual, 100)
		})
	})

	Convey("Given no agents", t, func() {
		So(roster.Physics(nil), ShouldResemble, roster.PhysicsBars{})
	})
}

func TestChart(t *testing.T) {
	Convey("Given agents with a wide XP spread", t, func() {
		bars := roster.Chart(agentsWithXP(1000, 500, 10), 0)

		Convey("Then heights are relative with a floor", func() {
			So(bars, ShouldHaveLength, 3)
			So(bars[0].Height, ShouldEqual, 100)
			So(bars[1].Height, ShouldEqual, 50)
			So(bars[2].Height, ShouldEqual, 5)
		})
	})

	Convey("Given more agents than the chart shows", t, func() {
		xps := make([]int, 30)
		for i := range xps {
			xps[i] = 3000 - i*10
		}

		So(roster.Chart(agentsWithXP(xps...), 0), ShouldHaveLength, roster.DefaultChartSize)
		So(roster.Chart(agentsWithXP(xps...), 3), ShouldHaveLength, 3)
	})

	Convey("Given a top agent with zero XP", t, func() {
		bars := roster.Chart(agentsWithXP(0, 0), 5)
		So(bars[0].Height, ShouldEqual, 5)
	})

	Convey("Given no agents", t, func() {
		So(roster.Chart(nil, 5), ShouldBeEmpty)
	})
}

func TestTable(t *testing.T) {
	Convey("Given sixty agents", t, func() {
		xps := make([]int, 60)
		agents := agentsWithXP(xps...)

		So(roster.Table(agents, 0), ShouldHaveLength, roster.DefaultTableSize)
		So(roster.Table(agents, 100), ShouldHaveLength, 60)

		Convey("Then the table is a copy", func() {
			rows := roster.Table(agents, 1)
			rows[0].Login = "changed"
			So(agents[0].Login, ShouldNotEqual, "changed")
		})
	})
}

func TestDemo(t *testing.T) {
	Convey("Given the demo dataset", t, func() {
		agents, stats := roster.Demo()

		So(agents, ShouldHaveLength, 5)
		So(agents[0].Login, ShouldEqual, "Neo_One")
		So(agents[4].Rank, ShouldEqual, 5)
		So(stats, ShouldResemble, model.EventStats{TotalEvents: 15, TotalAttendance: 450})

		Convey("Then class and status follow the scoring thresholds", func() {
			for _, a := range agents {
				So(a.Class, ShouldEqual, scoring.Classify(a.Mass, a.Velocity, a.EventsAttended))
				So(a.Status, ShouldEqual, scoring.StatusOf(a.Velocity))
			}
			So(agents[0].Class, ShouldEqual, model.ClassStriker)
			So(agents[2].Class, ShouldEqual, model.ClassRookie)
			So(agents[4].Status, ShouldEqual, model.StatusOverdrive)
		})

		Convey("Then each call is independent", func() {
			agents[0].XP = 0
			again, _ := roster.Demo()
			So(again[0].XP, ShouldEqual, 15000)
		})
	})
}
