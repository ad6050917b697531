package stats

import (
	"testing"

	"dyncserver/campaign"
	"dyncserver/model"
	"dyncserver/worldmap"
	"dyncserver/worldmap/graph"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractCleanBattleNoExternalInterference(t *testing.T) {
	Convey("Given a battle where blue died out with no outside interference", t, func() {
		c := campaign.New(worldmap.New(graph.New()), 1, "1.0.0.0")
		c.EarlyBattles["5"] = &model.Battle{
			Nodes:      []int{5},
			GroupNames: []string{"Red Tanks", "Blue Tanks"},
		}
		c.GroupNodesMissionStart["Red Tanks"] = model.GroupStartRecord{Node: 5, Coalition: model.Red, Type: "T-80"}
		c.GroupNodesMissionStart["Blue Tanks"] = model.GroupStartRecord{Node: 5, Coalition: model.Blue, Type: "T-72"}
		c.Deaths = []model.DeathEvent{
			{UnitName: "u1", GroupName: "Blue Tanks", Coalition: model.Blue, Type: "T-72", TimestampS: 120},
		}

		report := MissionReport{ShotGroups: map[string]map[string]ShotEvent{}}

		Convey("Extract reports one clean conflict with blue as the casualty", func() {
			conflicts := Extract(c, report)
			So(conflicts, ShouldHaveLength, 1)
			conflict := conflicts[0]
			So(conflict.InitialRed, ShouldResemble, []string{"T-80"})
			So(conflict.InitialBlue, ShouldResemble, []string{"T-72"})
			So(conflict.SurvivingRed, ShouldResemble, []string{"T-80"})
			So(conflict.SurvivingBlue, ShouldBeEmpty)
		})
	})
}

func TestExtractDropsBattleWithBothSidesSurviving(t *testing.T) {
	Convey("Given a battle an outside plane interfered with, with both sides still standing", t, func() {
		c := campaign.New(worldmap.New(graph.New()), 1, "1.0.0.0")
		c.EarlyBattles["5"] = &model.Battle{
			Nodes:      []int{5},
			GroupNames: []string{"Red Tanks", "Blue Tanks"},
		}
		c.GroupNodesMissionStart["Red Tanks"] = model.GroupStartRecord{Node: 5, Coalition: model.Red, Type: "T-80"}
		c.GroupNodesMissionStart["Blue Tanks"] = model.GroupStartRecord{Node: 5, Coalition: model.Blue, Type: "T-72"}

		report := MissionReport{
			ShotGroups: map[string]map[string]ShotEvent{
				"Red Tanks": {"enemy plane": {WasPlane: true, TimeS: 30}},
			},
		}

		Convey("Extract discards the contaminated battle", func() {
			conflicts := Extract(c, report)
			So(conflicts, ShouldBeEmpty)
		})
	})
}
