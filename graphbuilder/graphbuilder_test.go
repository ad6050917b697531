package graphbuilder

import (
	"testing"

	"dyncserver/model"

	. "github.com/smartystreets/goconvey/convey"
)

func wp(x, y float64, reinforcement bool) RouteWaypoint {
	return RouteWaypoint{Coord: model.Point{X: x, Y: y}, Reinforcement: reinforcement}
}

func TestBuildEmpty(t *testing.T) {
	Convey("Given no routes", t, func() {
		g := Build(nil)
		Convey("the resulting graph has no nodes", func() {
			So(g.NumNodes(), ShouldEqual, 0)
		})
	})
}

func TestBuildMergesCloseWaypoints(t *testing.T) {
	Convey("Given two routes whose endpoints nearly coincide", t, func() {
		routes := [][]RouteWaypoint{
			{wp(0, 0, false), wp(1000, 0, false)},
			{wp(1000, 50, false), wp(2000, 0, false)},
		}
		g := Build(routes)

		Convey("the near-coincident waypoints (distance 50 < 200) merge into one node", func() {
			So(g.NumNodes(), ShouldEqual, 3)
		})

		Convey("every pair of distinct nodes is at least the merge distance apart", func() {
			for _, a := range g.Nodes() {
				na, _ := g.Node(a)
				for _, b := range g.Nodes() {
					if a == b {
						continue
					}
					nb, _ := g.Node(b)
					So(na.Coord.Dist(nb.Coord), ShouldBeGreaterThanOrEqualTo, 200.0)
				}
			}
		})
	})
}

func TestBuildReinforcementFlagIsConjunction(t *testing.T) {
	Convey("Given a route segment partially flagged reinforcement", t, func() {
		routes := [][]RouteWaypoint{
			{wp(0, 0, true), wp(1000, 0, false)},
		}
		g := Build(routes)

		Convey("a merged node formed purely from reinforcement waypoints is flagged", func() {
			n0, _ := g.Node(0)
			So(n0.IsReinforcement, ShouldBeTrue)
		})

		Convey("a node with any non-reinforcement constituent is not flagged", func() {
			n1, _ := g.Node(1)
			So(n1.IsReinforcement, ShouldBeFalse)
		})
	})
}

func TestBuildDetourDiamond(t *testing.T) {
	Convey("Given a diamond of two routes to the same destination, one longer", t, func() {
		routes := [][]RouteWaypoint{
			{wp(0, 0, false), wp(1000, 0, false), wp(2000, 1000, false)},
			{wp(0, 0, false), wp(0, 1000, false), wp(2000, 1000, false)},
		}
		g := Build(routes)

		Convey("edges between merged representatives preserve original weights", func() {
			So(g.NumNodes(), ShouldBeGreaterThan, 0)
			total := 0
			for _, n := range g.Nodes() {
				total += len(g.Neighbors(n))
			}
			So(total, ShouldBeGreaterThan, 0)
			w, ok := g.EdgeWeight(0, 1)
			So(ok, ShouldBeTrue)
			So(w, ShouldEqual, 1000.0)
			w, ok = g.EdgeWeight(3, 2)
			So(ok, ShouldBeTrue)
			So(w, ShouldEqual, 2000.0)
		})
	})
}
