package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/HaaL01/whiteboard/internal/room"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one WebSocket connection joined to the board.
type Client struct {
	conn *websocket.Conn
	peer *room.Peer
	room *room.Room
	log  *slog.Logger
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", c.Request.RemoteAddr, "err", err)
		return
	}
	conn.SetReadLimit(s.cfg.ReadLimit)

	peer := room.NewPeer(s.cfg.SendBuffer)
	r, err := s.hub.Join(peer)
	if err != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		conn.Close()
		return
	}

	client := &Client{
		conn: conn,
		peer: peer,
		room: r,
		log:  s.log.With("peer", peer.ID(), "remote", c.Request.RemoteAddr),
	}
	client.log.Debug("connection opened")

	go client.writePump()
	client.readPump()
}

// readPump hands inbound frames to the room in arrival order. When it returns
// the peer has left the room.
func (c *Client) readPump() {
	defer func() {
		c.room.Leave(c.peer)
		c.conn.Close()
		c.log.Debug("connection closed")
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read failed", "err", err)
			}
			return
		}
		if !c.room.Submit(c.peer, msg) {
			return
		}
	}
}

// writePump drains the peer's outbound channel onto the connection and keeps
// it alive with pings. A closed channel ends the connection with a close frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.peer.Outbound():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("websocket write failed", "err", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
