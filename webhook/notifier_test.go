package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPostDeliversUsernameAndContent(t *testing.T) {
	Convey("Given a notifier pointed at a fake webhook server", t, func() {
		var mu sync.Mutex
		var got payload
		received := make(chan struct{})

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			json.NewDecoder(r.Body).Decode(&got)
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
			close(received)
		}))
		defer server.Close()

		n := New("DynC Server", server.URL)

		Convey("Post delivers the message asynchronously", func() {
			n.Post("red destroyed a blue tank")

			select {
			case <-received:
			case <-time.After(2 * time.Second):
				t.Fatal("webhook server never received a request")
			}

			mu.Lock()
			defer mu.Unlock()
			So(got.Username, ShouldEqual, "DynC Server")
			So(got.Content, ShouldEqual, "red destroyed a blue tank")
		})
	})
}

func TestPostWithEmptyURLIsNoop(t *testing.T) {
	Convey("Given a notifier with no URL configured", t, func() {
		n := New("DynC Server", "")

		Convey("Post does not panic and sends nothing", func() {
			So(func() { n.Post("hello") }, ShouldNotPanic)
		})
	})
}

func TestPostOnNilNotifierIsNoop(t *testing.T) {
	Convey("Given a nil notifier", t, func() {
		var n *Notifier

		Convey("Post does not panic", func() {
			So(func() { n.Post("hello") }, ShouldNotPanic)
		})
	})
}
