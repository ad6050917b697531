package orchestrator

import (
	"testing"

	"dyncserver/campaign"
	"dyncserver/worldmap"
	"dyncserver/worldmap/graph"

	. "github.com/smartystreets/goconvey/convey"
)

func freshCampaign() *campaign.Campaign {
	return campaign.New(worldmap.New(graph.New()), 1, "1.0.0.0")
}

func TestProcessTurnTwoNodeTrivial(t *testing.T) {
	Convey("Given a two-node route with a red vehicle at its spawn and a blue vehicle at its spawn", t, func() {
		c := freshCampaign()
		req := TurnRequest{
			Routes: [][]string{{"0,0", "1000,0"}},
			Units: map[string]UnitReport{
				"r1": {Group: "Red Tanks", Pos: "0,0", Type: "T-80", Category: "vehicle", Coalition: "red"},
				"b1": {Group: "Blue Tanks", Pos: "1000,0", Type: "T-72", Category: "vehicle", Coalition: "blue"},
			},
			GoalRed:      "1000,0",
			GoalBlue:     "0,0",
			BullseyeRed:  "0,0",
			BullseyeBlue: "1000,0",
		}

		Convey("the first turn merges the graph and moves the group toward its objective", func() {
			result, err := ProcessTurn(c, req)
			So(err, ShouldBeNil)
			So(result.Stage, ShouldEqual, 0)
			So(result.GroupsDest["Red Tanks"], ShouldEqual, "1000.000000,0.000000")
		})
	})
}

func TestProcessTurnCorruptUnitField(t *testing.T) {
	Convey("Given a unit report missing its group field", t, func() {
		c := freshCampaign()
		req := TurnRequest{
			Routes: [][]string{{"0,0", "100,0"}},
			Units: map[string]UnitReport{
				"r1": {Pos: "0,0", Type: "T-80", Category: "vehicle", Coalition: "red"},
			},
			GoalRed:      "0,0",
			GoalBlue:     "100,0",
			BullseyeRed:  "0,0",
			BullseyeBlue: "100,0",
		}

		Convey("ProcessTurn fails with ErrCorruptUnit naming the missing field", func() {
			_, err := ProcessTurn(c, req)
			So(err, ShouldResemble, ErrCorruptUnit{Field: "group"})
		})
	})
}

func TestProcessTurnCensusMismatchResetsStage(t *testing.T) {
	Convey("Given a campaign already at stage 2 with a graph built", t, func() {
		c := freshCampaign()
		req := TurnRequest{
			Routes: [][]string{{"0,0", "100,0"}},
			Units: map[string]UnitReport{
				"r1": {Group: "Red Tanks", Pos: "0,0", Type: "T-80", Category: "vehicle", Coalition: "red"},
				"b1": {Group: "Blue Tanks", Pos: "100,0", Type: "T-72", Category: "vehicle", Coalition: "blue"},
			},
			GoalRed:      "100,0",
			GoalBlue:     "0,0",
			BullseyeRed:  "0,0",
			BullseyeBlue: "100,0",
		}
		_, err := ProcessTurn(c, req)
		So(err, ShouldBeNil)
		c.Stage = 2

		Convey("when the next report's unit census disagrees, the stage resets to 0", func() {
			req.Units = map[string]UnitReport{
				"b1": {Group: "Blue Tanks", Pos: "100,0", Type: "T-72", Category: "vehicle", Coalition: "blue"},
			}
			result, err := ProcessTurn(c, req)
			So(err, ShouldBeNil)
			So(result.Stage, ShouldEqual, 0)
		})
	})
}
