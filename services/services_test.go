package services

import (
	"bytes"
	"log"
	"testing"

	"dyncserver/config"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNewWiresDefaultClockAndNotifier(t *testing.T) {
	Convey("Given a loaded config and snapshot path", t, func() {
		cfg := &config.Config{Comms: config.Comms{User: "DynC Server", URL: ""}}

		Convey("New wires a SystemClock and a Store pointed at the snapshot path", func() {
			svc := New(cfg, "/tmp/campaign.json", nil)
			So(svc.Clock, ShouldHaveSameTypeAs, SystemClock{})
			So(svc.Notifier, ShouldNotBeNil)
			So(svc.Store, ShouldNotBeNil)
			So(svc.Logger, ShouldEqual, log.Default())
		})
	})
}

func TestNewUsesProvidedLogger(t *testing.T) {
	Convey("Given an explicit logger", t, func() {
		cfg := &config.Config{}
		var buf bytes.Buffer
		logger := log.New(&buf, "test: ", 0)

		Convey("New keeps the caller's logger instead of the default", func() {
			svc := New(cfg, "/tmp/campaign.json", logger)
			So(svc.Logger, ShouldEqual, logger)
		})
	})
}
