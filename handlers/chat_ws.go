package handlers

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/malariainfo"
	"github.com/dmitrymomot/malariainfo/pkg/chat"
)

const wsWriteTimeout = 10 * time.Second

// stream upgrades to a WebSocket and pushes the session's events until the
// client leaves or the session ends. The first frame is a "snapshot" event
// carrying the current state; every later frame is newer than it. Clients
// send nothing; they act through the JSON API.
func (h *Chat) stream(c malariainfo.Context) error {
	id, ok := h.ids.Extract(c)
	if !ok {
		return malariainfo.ErrBadRequest("errors.chat_session", malariainfo.WithErrorCode("session_required"))
	}
	w, err := h.sessions.Get(c, id)
	if err != nil {
		return chatError(err)
	}
	// Subscribe before the snapshot so nothing falls in between; events the
	// snapshot already covers are skipped by sequence number.
	events, unsubscribe, err := h.sessions.Subscribe(c, id)
	if err != nil {
		return chatError(err)
	}
	defer unsubscribe()
	snap := w.Snapshot()

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already answered with an HTTP error
		c.LogWarn("websocket upgrade failed", "error", err)
		return nil
	}
	defer func() { _ = conn.Close() }()

	ctx, cancel := context.WithCancel(c.Context())
	defer cancel()
	go readPump(conn, cancel)

	c.LogDebug("chat stream opened", "session_id", id)
	if err := writeFrame(conn, snapshotFrame(snap)); err != nil {
		return nil
	}

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case e, ok := <-events:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout))
				return nil
			}
			if e.Seq <= snap.Seq {
				continue
			}
			if err := writeFrame(conn, Frame{Event: e}); err != nil {
				c.LogDebug("chat stream write failed", "error", err)
				return nil
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return nil
			}
		}
	}
}

// Frame is one WebSocket message: a widget event, or for the first frame
// the full snapshot.
type Frame struct {
	chat.Event
	Snapshot *chat.Snapshot `json:"snapshot,omitempty"`
}

func snapshotFrame(s chat.Snapshot) Frame {
	return Frame{
		Event:    chat.Event{Type: "snapshot", SessionID: s.ID, State: s.State, Seq: s.Seq},
		Snapshot: &s,
	}
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(f)
}

// readPump drains the connection so control frames are handled, and
// cancels the stream once the client goes away.
func readPump(conn *websocket.Conn, done context.CancelFunc) {
	defer done()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
