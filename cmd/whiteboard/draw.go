package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HaaL01/whiteboard/internal/client"
	"github.com/HaaL01/whiteboard/internal/geom"
)

func newDrawCommand() *cobra.Command {
	var (
		url      string
		tool     string
		from, to string
		text     string
		timeout  time.Duration
	)
	style := client.DefaultStyle()
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Add one shape to a board",
		Long: `Add one shape to a board by replaying the pointer gesture that draws it.

  whiteboard draw --tool rect --from 10,10 --to 200,120 --color '#ff0000'
  whiteboard draw --tool text --from 40,40 --text hello --width 6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := client.ParseTool(tool)
			if err != nil {
				return err
			}
			if t == client.ToolSelect {
				return fmt.Errorf("%w: select does not draw", client.ErrUnknownTool)
			}
			start, err := parsePoint(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end := start
			if t != client.ToolText {
				if end, err = parsePoint(to); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			sess, closeConn, err := join(ctx, url, []client.Option{client.WithStyle(style)})
			if err != nil {
				return err
			}
			defer closeConn()

			before := len(sess.Shapes())
			if err := gesture(sess, t, start, end, text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d shape(s)\n", len(sess.Shapes())-before)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&url, "url", defaultURL, "server WebSocket URL")
	f.StringVar(&tool, "tool", string(client.ToolRect), "pencil, eraser, rect, text, line or arrow")
	f.StringVar(&from, "from", "", "start point x,y in board coordinates")
	f.StringVar(&to, "to", "", "end point x,y in board coordinates")
	f.StringVar(&text, "text", "", "text to place with the text tool")
	f.StringVar(&style.Color, "color", style.Color, "stroke colour")
	f.Float64Var(&style.Width, "width", style.Width, "stroke width, or text size")
	f.DurationVar(&timeout, "timeout", 5*time.Second, "give up if the board has not arrived by then")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

// gesture drives sess through the pointer events that draw one shape. The
// view is the identity, so screen and board coordinates coincide.
func gesture(sess *client.Session, t client.Tool, from, to geom.Point, text string) error {
	if err := sess.SetTool(t); err != nil {
		return err
	}
	sess.PointerDown(client.ButtonLeft, from)
	if t == client.ToolText {
		return sess.CommitText(text)
	}
	if err := sess.PointerMove(to); err != nil {
		return err
	}
	return sess.PointerUp(client.ButtonLeft, to)
}

func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("y: %w", err)
	}
	return geom.Point{X: x, Y: y}, nil
}
