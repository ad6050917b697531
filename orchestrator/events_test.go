package orchestrator

import (
	"testing"

	"dyncserver/model"
	"dyncserver/worldmap"
	"dyncserver/worldmap/graph"

	. "github.com/smartystreets/goconvey/convey"
)

func TestUnitDestroyedDissolvesEmptyGroup(t *testing.T) {
	Convey("Given a group with a single red unit", t, func() {
		c := freshCampaign()
		g := model.NewGroup("Red Tanks", model.CategoryVehicle, model.Red, false)
		g.AddUnit(&model.Unit{Name: "u1", Type: "T-80"})
		c.Map.AddGroup(g, 0)

		Convey("destroying its last unit removes the group from the map", func() {
			err := UnitDestroyed(c, "u1", "Red Tanks", 42.0)
			So(err, ShouldBeNil)

			_, ok := c.Map.FindGroupByName("Red Tanks")
			So(ok, ShouldBeFalse)
			So(c.Deaths, ShouldHaveLength, 1)
			So(c.Deaths[0].Coalition, ShouldEqual, model.Red)
			So(c.DestroyedUnitNamesAndGroups["u1"], ShouldEqual, "Red Tanks")
		})
	})
}

func TestUnitDestroyedUnknownGroupIsNoop(t *testing.T) {
	Convey("Given a unit reported as destroyed in a group the map has never heard of", t, func() {
		c := freshCampaign()

		Convey("UnitDestroyed returns no error and records nothing", func() {
			err := UnitDestroyed(c, "ghost", "Ghost Squadron", 1.0)
			So(err, ShouldBeNil)
			So(c.Deaths, ShouldBeEmpty)
		})
	})
}

func TestChangeScoreCreditsOpposingCoalition(t *testing.T) {
	Convey("Given a red unit's player death", t, func() {
		c := freshCampaign()
		scoring := ScoringTable{PlayerDeath: 100}

		Convey("ChangeScore credits blue, not red", func() {
			red, blue, err := ChangeScore(c, scoring, ReasonPlayerDeath, model.Red, "u1")
			So(err, ShouldBeNil)
			So(red, ShouldEqual, 0)
			So(blue, ShouldEqual, 100)
		})
	})
}

func TestChangeScoreRejectsNeutralCoalition(t *testing.T) {
	Convey("Given a coalition that is neither red nor blue", t, func() {
		c := freshCampaign()
		scoring := ScoringTable{PlayerDeath: 100}

		Convey("ChangeScore returns an error", func() {
			_, _, err := ChangeScore(c, scoring, ReasonPlayerDeath, model.Neutral, "u1")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestComputeScoresCombinesExtraAndVehicleScores(t *testing.T) {
	Convey("Given a campaign with one red vehicle group and a red-heavy front line", t, func() {
		c := freshCampaign()
		c.ExtraScores[model.Red] = 50
		c.Map.Graph = graph.New()
		c.Map.Graph.AddNode(model.Point{X: 0, Y: 0}, false)
		g := model.NewGroup("Red Tanks", model.CategoryVehicle, model.Red, false)
		g.AddUnit(&model.Unit{Name: "u1", Type: "T-80"})
		g.AddUnit(&model.Unit{Name: "u2", Type: "T-80"})
		c.Map.AddGroup(g, 0)
		c.Map.MultipliersForRed = map[int]float64{0: 0.75}

		scoring := ScoringTable{UnitDistanceMultiplier: 1.0, UnitBaseScore: 10}

		Convey("ComputeScores adds extra_scores to the distance-scaled vehicle score", func() {
			red, blue := ComputeScores(c, scoring)
			So(red, ShouldEqual, 50+(1+0.75)*2*10)
			So(blue, ShouldEqual, 0)
		})
	})
}

func TestSupportDestroyedReportsThresholdCrossing(t *testing.T) {
	Convey("Given a coalition with support units at the restock threshold plus one", t, func() {
		c := freshCampaign()
		c.Map.SetNumSupportUnits(model.Red, worldmap.SupportRestockThreshold+1)

		Convey("destroying one crosses the threshold", func() {
			remaining, crossed := SupportDestroyed(c, model.Red)
			So(remaining, ShouldEqual, worldmap.SupportRestockThreshold)
			So(crossed, ShouldBeTrue)
		})
	})
}
