package site

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/cgblog/internal/search"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// searchMessage is the incoming WebSocket message format.
type searchMessage struct {
	Type           string `json:"type"` // "open", "close", "query", "content" or "key"
	Query          string `json:"query,omitempty"`
	IncludeContent bool   `json:"includeContent,omitempty"`
	Key            string `json:"key,omitempty"`
}

// searchEvent is the outgoing WebSocket message format.
type searchEvent struct {
	Type  string        `json:"type"` // "state", "navigate" or "error"
	State *search.State `json:"state,omitempty"`
	Path  string        `json:"path,omitempty"`
	Error string        `json:"error,omitempty"`
}

// socketWriter serializes writes to one connection.
type socketWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (sw *socketWriter) send(ev searchEvent) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.conn.WriteJSON(ev)
}

// handleSearchSocket runs one live search session per connection. Every
// state change is pushed to the client; Enter on a result sends the path
// to navigate to.
func (s *Site) handleSearchSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("search socket upgrade")
		return
	}
	defer conn.Close()

	out := &socketWriter{conn: conn}
	log := s.log.WithField("component", "search-socket")
	sess := search.NewSession(s.newIndexer(),
		search.WithDebounce(s.cfg.SearchDebounce),
		search.WithSessionLogger(log),
		search.WithNotify(func(st search.State) {
			if err := out.send(searchEvent{Type: "state", State: &st}); err != nil {
				log.WithError(err).Debug("pushing search state")
			}
		}),
	)
	defer sess.Stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("search socket read")
			}
			return
		}

		var req searchMessage
		if err := json.Unmarshal(msg, &req); err != nil {
			out.send(searchEvent{Type: "error", Error: "invalid message format"})
			continue
		}

		switch req.Type {
		case "open":
			sess.Open()
		case "close":
			sess.Close()
		case "query":
			sess.SetQuery(req.Query)
		case "content":
			sess.SetIncludeContent(req.IncludeContent)
		case "key":
			if path := sess.Key(req.Key); path != "" {
				out.send(searchEvent{Type: "navigate", Path: path})
			}
		default:
			out.send(searchEvent{Type: "error", Error: "unknown message type: " + req.Type})
		}
	}
}
