package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/HaaL01/whiteboard/internal/geom"
	"github.com/HaaL01/whiteboard/internal/presence"
	"github.com/HaaL01/whiteboard/internal/protocol"
	"github.com/HaaL01/whiteboard/internal/render"
	"github.com/HaaL01/whiteboard/internal/shape"
)

type snapshotQuery struct {
	Width   int     `form:"width,default=1024" binding:"min=1,max=4096"`
	Height  int     `form:"height,default=768" binding:"min=1,max=4096"`
	Scale   float64 `form:"scale,default=1" binding:"min=0.1,max=10"`
	OffsetX float64 `form:"offsetX"`
	OffsetY float64 `form:"offsetY"`
}

// board returns what the running room holds. Before the first connection
// there is no room and the board is empty.
func (s *Server) board() ([]shape.Shape, []presence.Entry, int) {
	r, ok := s.hub.Current()
	if !ok {
		return nil, nil, 0
	}
	return r.Shapes(), r.Cursors(), r.PeerCount()
}

func (s *Server) handleHealth(c *gin.Context) {
	shapes, _, peers := s.board()
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"peers":  peers,
		"shapes": len(shapes),
	})
}

func (s *Server) handleShapes(c *gin.Context) {
	shapes, _, _ := s.board()
	data, err := protocol.EncodeHistory(shapes)
	if err != nil {
		s.log.Error("encode history", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode failed"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) handleSnapshot(c *gin.Context) {
	var q snapshotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rd, err := render.New(render.Options{Width: q.Width, Height: q.Height})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shapes, cursors, _ := s.board()
	var buf bytes.Buffer
	err = rd.WritePNG(&buf, render.Frame{
		Shapes:  shapes,
		Cursors: cursors,
		View:    geom.ViewState{Scale: q.Scale, OffsetX: q.OffsetX, OffsetY: q.OffsetY},
	})
	if err != nil {
		s.log.Error("render snapshot", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
