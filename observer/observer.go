// Package observer publishes a running campaign's score and stage to any
// number of read-only GUI clients over websocket, adapting the single-page
// push-update pattern the reference server uses for its training
// visualizations.
package observer

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"

	"dyncserver/atomicfloat"
	"dyncserver/model"
)

const (
	writeWait        = 1 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 10 * time.Second
	publishInterval  = 250 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Snapshot is one broadcastable moment of campaign state.
type Snapshot struct {
	Stage      int
	RedScore   int
	BlueScore  int
	RedSupport int
	BlueSupport int
}

// Hub fans a single stream of Snapshot updates out to every connected
// client. Unlike the reference server, which assumes exactly one client,
// Hub tracks an arbitrary set, since several GUI instances may watch the
// same campaign.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan Snapshot
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan Snapshot)}
}

// Broadcast pushes snap to every currently connected client without
// blocking: a client whose update channel is still full misses this
// snapshot and stays connected for the next one.
func (h *Hub) Broadcast(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- snap:
		default:
			log.Printf("observer: skipping update for slow client %s", conn.RemoteAddr())
		}
	}
}

// ServeWebsocket upgrades r into a websocket connection and streams
// Snapshot updates to it until the client disconnects.
func (h *Hub) ServeWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Println("observer: upgrade:", err)
		return
	}
	defer h.closeWebsocket(ws)

	updates := make(chan Snapshot, 1)
	h.mu.Lock()
	h.clients[ws] = updates
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.clients, ws)
		h.mu.Unlock()
	}()

	h.publish(r.Context(), ws, updates)
}

func (h *Hub) publish(ctx context.Context, ws *websocket.Conn, updates <-chan Snapshot) {
	pubCtx, cancelPub := context.WithCancel(ctx)
	defer cancelPub()
	pinger := channerics.NewTicker(pubCtx.Done(), pingPeriod)
	lastPong := time.Now()

	pong := make(chan struct{})
	defer close(pong)
	ws.SetPongHandler(func(string) error {
		pong <- struct{}{}
		return nil
	})

	go func() {
		for {
			select {
			case <-pubCtx.Done():
				return
			default:
				if _, _, err := ws.ReadMessage(); err != nil {
					cancelPub()
					return
				}
			}
		}
	}()

	for {
		select {
		case <-pubCtx.Done():
			return
		case <-pinger:
			if time.Since(lastPong) > pingPeriod*2 {
				return
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-pong:
			lastPong = time.Now()
		case snap := <-updates:
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := ws.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}

func (h *Hub) closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	ws.Close()
}

// SnapshotFromScores builds a Snapshot from a campaign's current stage,
// scoring, and support pools.
func SnapshotFromScores(stage int, extraScores map[model.Coalition]int, numSupportUnits map[model.Coalition]int) Snapshot {
	return Snapshot{
		Stage:       stage,
		RedScore:    extraScores[model.Red],
		BlueScore:   extraScores[model.Blue],
		RedSupport:  numSupportUnits[model.Red],
		BlueSupport: numSupportUnits[model.Blue],
	}
}

// ScoreGauge holds the most recently computed red/blue scores outside the
// campaign mutex entirely, so the broadcast loop can sample them on every
// tick without ever waiting behind a turn in progress.
type ScoreGauge struct {
	red  *atomicfloat.Float64
	blue *atomicfloat.Float64
}

// NewScoreGauge builds a zeroed gauge.
func NewScoreGauge() *ScoreGauge {
	return &ScoreGauge{red: atomicfloat.New(0), blue: atomicfloat.New(0)}
}

// Publish is called by a turn handler to make the turn's freshly computed
// scores visible to readers. It takes no lock of its own, so callers may
// invoke it with or without the campaign lock held.
func (g *ScoreGauge) Publish(red, blue float64) {
	g.red.Set(red)
	g.blue.Set(blue)
}

// Read samples the gauge without blocking.
func (g *ScoreGauge) Read() (red, blue float64) {
	return g.red.Read(), g.blue.Read()
}
