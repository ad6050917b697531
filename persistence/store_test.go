package persistence

import (
	"path/filepath"
	"testing"

	"dyncserver/campaign"
	"dyncserver/worldmap"
	"dyncserver/worldmap/graph"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	Convey("Given a fresh campaign saved to a snapshot file", t, func() {
		dir := t.TempDir()
		store := NewStore(filepath.Join(dir, "campaign.json"))

		c := campaign.New(worldmap.New(graph.New()), 42, "1.0.0.0")
		c.Stage = 3

		So(store.Exists(), ShouldBeFalse)
		So(store.Save(c), ShouldBeNil)
		So(store.Exists(), ShouldBeTrue)

		Convey("Load reconstructs a campaign at the same stage", func() {
			loaded, err := store.Load("1.0.0.0")
			So(err, ShouldBeNil)
			So(loaded.Stage, ShouldEqual, 3)
		})

		Convey("Load rejects a snapshot older than the minimum version", func() {
			_, err := store.Load("2.0.0.0")
			So(err, ShouldHaveSameTypeAs, ErrIncompatibleSnapshot{})
		})
	})
}

func TestStoreLoadMissingFile(t *testing.T) {
	Convey("Given a path with no snapshot written", t, func() {
		dir := t.TempDir()
		store := NewStore(filepath.Join(dir, "missing.json"))

		Convey("Load returns an error", func() {
			_, err := store.Load("1.0.0.0")
			So(err, ShouldNotBeNil)
		})
	})
}
