package schedule

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"roomsched/gateway"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

// LiveFeed streams full room snapshots to browser clients whenever the store
// changes, mirroring what the engine itself sees.
type LiveFeed struct {
	gw gateway.Gateway
}

func NewLiveFeed(gw gateway.Gateway) *LiveFeed {
	return &LiveFeed{gw: gw}
}

func (f *LiveFeed) HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomid")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}
	defer conn.Close()

	ch, err := f.gw.Subscribe(r.Context(), roomID)
	if err != nil {
		log.Printf("Live feed subscribe for %s failed: %v", roomID, err)
		return
	}

	// Drain client frames so we notice disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case days, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(map[string]any{"roomId": roomID, "schedule": days})
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}
