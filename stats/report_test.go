package stats

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMissionDurationConvertsSecondsToDuration(t *testing.T) {
	Convey("Given a mission_time of 5400 seconds", t, func() {
		d := missionDuration(5400)
		Convey("it renders as 1h30m0s", func() {
			So(d, ShouldEqual, 90*time.Minute)
		})
	})
}
