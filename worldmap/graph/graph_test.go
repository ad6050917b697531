package graph

import (
	"testing"

	"dyncserver/model"

	. "github.com/smartystreets/goconvey/convey"
)

func TestHopDistances(t *testing.T) {
	Convey("Given a four node chain graph", t, func() {
		g := New()
		a := g.AddNode(model.Point{X: 0, Y: 0}, false)
		b := g.AddNode(model.Point{X: 1, Y: 0}, false)
		c := g.AddNode(model.Point{X: 2, Y: 0}, false)
		d := g.AddNode(model.Point{X: 3, Y: 0}, false)
		g.AddEdge(a, b, 1)
		g.AddEdge(b, c, 1)
		g.AddEdge(c, d, 1)

		Convey("HopDistances from the first node counts edges, not weight", func() {
			dist := g.HopDistances(a)
			So(dist[a], ShouldEqual, 0)
			So(dist[b], ShouldEqual, 1)
			So(dist[c], ShouldEqual, 2)
			So(dist[d], ShouldEqual, 3)
		})

		Convey("an isolated node is absent from the distance map", func() {
			iso := g.AddNode(model.Point{X: 99, Y: 99}, false)
			dist := g.HopDistances(a)
			_, reached := dist[iso]
			So(reached, ShouldBeFalse)
		})
	})
}

func TestShortestPath(t *testing.T) {
	Convey("Given a diamond graph with one long and one short route", t, func() {
		g := New()
		a := g.AddNode(model.Point{X: 0, Y: 0}, false)
		b := g.AddNode(model.Point{X: 10, Y: 0}, false)
		c := g.AddNode(model.Point{X: 0, Y: 10}, false)
		d := g.AddNode(model.Point{X: 20, Y: 10}, false)
		g.AddEdge(a, b, 10)
		g.AddEdge(b, d, 15)
		g.AddEdge(a, c, 10)
		g.AddEdge(c, d, 10)

		Convey("ShortestPath prefers the cheaper route by total weight", func() {
			path, ok := g.ShortestPath(a, d)
			So(ok, ShouldBeTrue)
			So(path[0], ShouldEqual, a)
			So(path[len(path)-1], ShouldEqual, d)
			So(g.PathWeight(path), ShouldEqual, float64(20))
		})

		Convey("an unreachable target reports ok=false", func() {
			iso := g.AddNode(model.Point{X: 99, Y: 99}, false)
			_, ok := g.ShortestPath(a, iso)
			So(ok, ShouldBeFalse)
		})
	})
}
