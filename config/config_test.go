package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	Convey("Given a path with no config file present", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "dyncserver.ini")

		Convey("Load returns the package defaults without error", func() {
			cfg, err := Load(path)
			So(err, ShouldBeNil)
			So(cfg.Campaign.MaxInfantry, ShouldEqual, 4)
			So(cfg.Comms.User, ShouldEqual, "DynC Server")
			So(cfg.Scoring.UnitBaseScore, ShouldEqual, 10.0)
		})
	})
}

func TestWriteDefaultThenLoad(t *testing.T) {
	Convey("Given WriteDefault has seeded a fresh config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "dyncserver.ini")
		So(WriteDefault(path), ShouldBeNil)

		Convey("a second WriteDefault call leaves the file untouched", func() {
			before, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(WriteDefault(path), ShouldBeNil)
			after, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(after), ShouldEqual, string(before))
		})

		Convey("Load parses the seeded AA unit lists", func() {
			cfg, err := Load(path)
			So(err, ShouldBeNil)
			So(cfg.Campaign.AARed, ShouldResemble, []string{"ZSU-23-4 Shilka"})
			So(cfg.Campaign.AABlue, ShouldResemble, []string{"Vulcan"})
		})
	})
}

func TestSplitQuotedList(t *testing.T) {
	Convey("Given a comma-separated quoted list with extra whitespace", t, func() {
		out := splitQuotedList(`"Vulcan", "M1097 Avenger"`)
		Convey("it trims quotes and whitespace from every entry", func() {
			So(out, ShouldResemble, []string{"Vulcan", "M1097 Avenger"})
		})
	})

	Convey("Given an empty string", t, func() {
		out := splitQuotedList("")
		Convey("it returns an empty, non-nil slice", func() {
			So(out, ShouldBeEmpty)
		})
	})
}
