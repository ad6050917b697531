package battlescheduler

import (
	"testing"

	"dyncserver/campaign"
	"dyncserver/model"
	"dyncserver/worldmap"
	"dyncserver/worldmap/graph"

	. "github.com/smartystreets/goconvey/convey"
)

func twoNodeCampaign() *campaign.Campaign {
	g := graph.New()
	g.AddNode(model.Point{X: 0, Y: 0}, false)
	g.AddNode(model.Point{X: 100, Y: 0}, false)
	g.AddEdge(0, 1, 100)
	m := worldmap.New(g)
	return campaign.New(m, 1, "1.0.0.0")
}

func TestResolveCrossingBattles(t *testing.T) {
	Convey("Given red and blue groups decided to swap nodes", t, func() {
		c := twoNodeCampaign()
		red := model.NewGroup("Red Tanks", model.CategoryVehicle, model.Red, false)
		red.Units["r1"] = &model.Unit{Name: "r1", Position: model.Point{X: 0, Y: 0}}
		blue := model.NewGroup("Blue Tanks", model.CategoryVehicle, model.Blue, false)
		blue.Units["b1"] = &model.Unit{Name: "b1", Position: model.Point{X: 100, Y: 0}}
		c.Map.AddGroup(red, 0)
		c.Map.AddGroup(blue, 1)
		c.SetMovementDecision("Red Tanks", 1)
		c.SetMovementDecision("Blue Tanks", 0)

		scheduled, positions := ResolveCrossingBattles(c)

		Convey("both groups are marked scheduled and teleported to the midpoint", func() {
			So(scheduled["Red Tanks"], ShouldBeTrue)
			So(scheduled["Blue Tanks"], ShouldBeTrue)
			So(len(positions), ShouldEqual, 2)
			So(red.Units["r1"].Position, ShouldResemble, model.Point{X: 50, Y: 0})
		})

		Convey("a battle is recorded against both original nodes", func() {
			So(len(c.EarlyBattles), ShouldEqual, 1)
		})
	})
}
