package worldmap

import (
	"testing"

	"dyncserver/model"
	"dyncserver/worldmap/graph"

	. "github.com/smartystreets/goconvey/convey"
)

// chain builds a=0 - b=1 - c=2 - d=3 - e=4, each edge weight 1, and returns
// the Map with goals at the two ends.
func chain() *Map {
	g := graph.New()
	for i := 0; i < 5; i++ {
		g.AddNode(model.Point{X: float64(i * 100), Y: 0}, false)
	}
	for i := 0; i+1 < 5; i++ {
		g.AddEdge(i, i+1, 1)
	}
	m := New(g)
	m.UpdateGoals(model.Point{X: 0, Y: 0}, model.Point{X: 400, Y: 0}, 4)
	return m
}

func TestUpdateNodesByDistance(t *testing.T) {
	Convey("Given a five-node chain with goals at each end", t, func() {
		m := chain()
		m.UpdateNodesByDistance()

		Convey("blue_nodes_by_distance measures hops from the red goal", func() {
			So(m.BlueNodesByDistance[0], ShouldResemble, []int{0})
			So(m.BlueNodesByDistance[4], ShouldResemble, []int{4})
		})

		Convey("red_nodes_by_distance measures hops from the blue goal", func() {
			So(m.RedNodesByDistance[0], ShouldResemble, []int{4})
			So(m.RedNodesByDistance[4], ShouldResemble, []int{0})
		})
	})
}

func TestGetNodeExtraMultiplier(t *testing.T) {
	Convey("Given a five-node chain with goals at each end", t, func() {
		m := chain()

		Convey("each coalition gets the full share at its own goal node", func() {
			share, ok := m.GetNodeExtraMultiplier(0, model.Red)
			So(ok, ShouldBeTrue)
			So(share, ShouldEqual, 1.0)

			share, ok = m.GetNodeExtraMultiplier(4, model.Blue)
			So(ok, ShouldBeTrue)
			So(share, ShouldEqual, 1.0)
		})

		Convey("the midpoint splits the share evenly", func() {
			share, ok := m.GetNodeExtraMultiplier(2, model.Red)
			So(ok, ShouldBeTrue)
			So(share, ShouldEqual, 0.5)
		})
	})
}

func TestIsEnemyActivityInNode(t *testing.T) {
	Convey("Given a node with a blue group", t, func() {
		m := chain()
		g := model.NewGroup("Blue Tanks", model.CategoryVehicle, model.Blue, false)
		g.Units["u1"] = &model.Unit{Name: "u1", Position: model.Point{X: 200, Y: 0}}
		m.AddGroup(g, 2)

		Convey("red sees enemy activity there", func() {
			So(m.IsEnemyActivityInNode(model.Red, 2), ShouldBeTrue)
		})

		Convey("blue does not see its own group as enemy activity", func() {
			So(m.IsEnemyActivityInNode(model.Blue, 2), ShouldBeFalse)
		})
	})
}

func TestFindGreatestThreatNode(t *testing.T) {
	Convey("Given one red vehicle group two hops from the blue goal", t, func() {
		m := chain()
		g := model.NewGroup("Red Tanks", model.CategoryVehicle, model.Red, false)
		g.Units["u1"] = &model.Unit{Name: "u1", Position: model.Point{X: 200, Y: 0}}
		m.AddGroup(g, 2)

		Convey("it is identified as the threat to blue's goal", func() {
			node := m.FindGreatestThreatNode(m.BlueGoalNode, model.Red)
			So(node, ShouldEqual, 2)
		})
	})

	Convey("Given no vehicle presence at all", t, func() {
		m := chain()
		Convey("FindGreatestThreatNode reports -1", func() {
			So(m.FindGreatestThreatNode(m.BlueGoalNode, model.Red), ShouldEqual, -1)
		})
	})
}
