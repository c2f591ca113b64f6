package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/gogpu/ggedit"
	"github.com/gogpu/ggedit/canvas"
)

// PointerEvent is a client message on the pointer socket. Type is
// "down", "move" or "up"; X and Y are client coordinates.
type PointerEvent struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// PointerReply answers every PointerEvent. Crop is set when a release
// applied a crop.
type PointerReply struct {
	Type  string       `json:"type"`
	State ggedit.State `json:"state"`
	Crop  *canvas.Rect `json:"crop,omitempty"`
	Error string       `json:"error,omitempty"`
}

// handleWS streams pointer events into the session's crop gesture. Every
// message keeps the session alive; the socket closes once it expires.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	id := r.PathValue("id")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log().Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	for {
		var ev PointerEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log().Debug("websocket closed", "err", err)
			}
			return
		}
		if !s.store.Touch(id) {
			_ = conn.WriteJSON(PointerReply{Type: "error", Error: ErrNoSession.Error()})
			return
		}
		if err := conn.WriteJSON(pointer(ed, ev)); err != nil {
			s.log().Debug("websocket write failed", "err", err)
			return
		}
	}
}

func pointer(ed *ggedit.Editor, ev PointerEvent) PointerReply {
	reply := PointerReply{Type: "state"}
	switch ev.Type {
	case "down":
		ed.PointerDown(ev.X, ev.Y)
	case "move":
		ed.PointerMove(ev.X, ev.Y)
	case "up":
		r, applied, err := ed.PointerUp(ev.X, ev.Y)
		if err != nil {
			reply.Type, reply.Error = "error", err.Error()
		} else if applied {
			reply.Crop = &r
		}
	default:
		reply.Type, reply.Error = "error", fmt.Sprintf("unknown pointer event %q", ev.Type)
	}
	reply.State = ed.State()
	return reply
}
