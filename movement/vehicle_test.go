package movement

import (
	"math/rand"
	"testing"

	"dyncserver/model"
	"dyncserver/worldmap"
	"dyncserver/worldmap/graph"

	. "github.com/smartystreets/goconvey/convey"
)

func chainMap() *worldmap.Map {
	g := graph.New()
	for i := 0; i < 4; i++ {
		g.AddNode(model.Point{X: float64(i * 100), Y: 0}, false)
	}
	for i := 0; i+1 < 4; i++ {
		g.AddEdge(i, i+1, 100)
	}
	m := worldmap.New(g)
	m.UpdateGoals(model.Point{X: 0, Y: 0}, model.Point{X: 300, Y: 0}, 4)
	m.UpdateNodesByDistance()
	return m
}

func TestDecideMoveAdvancesTowardGoal(t *testing.T) {
	Convey("Given a red vehicle group one hop from its goal", t, func() {
		m := chainMap()
		grp := model.NewGroup("Red Tanks", model.CategoryVehicle, model.Red, false)
		grp.Units["u1"] = &model.Unit{Name: "u1", Position: model.Point{X: 100, Y: 0}}
		m.AddGroup(grp, 1)

		Convey("DecideMove chooses the goal node directly", func() {
			node, ok := DecideMove(grp, m, rand.New(rand.NewSource(1)))
			So(ok, ShouldBeTrue)
			So(node, ShouldEqual, m.RedGoalNode)
		})
	})
}

func TestDecideMoveIgnoresStaticGroups(t *testing.T) {
	Convey("Given a static decoy group", t, func() {
		m := chainMap()
		grp := model.NewGroup("staticgroup Decoy", model.CategoryVehicle, model.Red, false)
		grp.Units["u1"] = &model.Unit{Name: "u1", Position: model.Point{X: 200, Y: 0}}
		m.AddGroup(grp, 2)

		Convey("DecideMove returns no decision", func() {
			_, ok := DecideMove(grp, m, rand.New(rand.NewSource(1)))
			So(ok, ShouldBeFalse)
		})
	})
}
