package persistence

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestVersionStringToNumber(t *testing.T) {
	Convey("Given a plain four-part version", t, func() {
		n, ok := VersionStringToNumber("1.2.3.4")
		Convey("it converts to base-100 digits in order", func() {
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 1020304)
		})
	})

	Convey("Given a version with a -post suffix", t, func() {
		n, ok := VersionStringToNumber("1.0.0.0-post3")
		Convey("the suffix is ignored", func() {
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 1000000)
		})
	})

	Convey("Given a version component of 100 or more", t, func() {
		_, ok := VersionStringToNumber("1.100.0.0")
		Convey("it is rejected", func() {
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given a version with fewer than four components", t, func() {
		n, ok := VersionStringToNumber("2.1")
		Convey("missing components default to zero", func() {
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 2010000)
		})
	})
}

func TestIsCompatible(t *testing.T) {
	Convey("Given a snapshot version at or above the minimum", t, func() {
		So(IsCompatible("1.2.0.0", "1.0.0.0"), ShouldBeTrue)
	})
	Convey("Given a snapshot version below the minimum", t, func() {
		So(IsCompatible("0.9.0.0", "1.0.0.0"), ShouldBeFalse)
	})
}
