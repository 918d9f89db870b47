package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/HaaL01/whiteboard/internal/client"
	"github.com/HaaL01/whiteboard/internal/geom"
	"github.com/HaaL01/whiteboard/internal/render"
)

const defaultURL = "ws://localhost:8080/ws"

func newSnapshotCommand() *cobra.Command {
	var (
		url           string
		out           string
		width, height int
		scale         float64
		timeout       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Join a board and save it as PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rd, err := render.New(render.Options{Width: width, Height: height})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			sess, closeConn, err := join(ctx, url, nil)
			if err != nil {
				return err
			}
			defer closeConn()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer f.Close()

			view := geom.DefaultView()
			view.Scale = geom.ClampScale(scale)
			err = rd.WritePNG(f, render.Frame{
				Shapes:  sess.Shapes(),
				Cursors: sess.Cursors(),
				View:    view,
			})
			if err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d shapes\n", out, len(sess.Shapes()))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&url, "url", defaultURL, "server WebSocket URL")
	f.StringVarP(&out, "out", "o", "board.png", "output file")
	f.IntVar(&width, "width", 1024, "image width in pixels")
	f.IntVar(&height, "height", 768, "image height in pixels")
	f.Float64Var(&scale, "scale", 1, "zoom factor")
	f.DurationVar(&timeout, "timeout", 5*time.Second, "give up if the board has not arrived by then")
	return cmd
}

// join connects a session to url and waits for the board history. The
// returned func closes the connection.
func join(ctx context.Context, url string, opts []client.Option) (*client.Session, func(), error) {
	conn, err := client.Dial(ctx, url, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	sess := client.NewSession(conn, opts...)

	listenCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.Listen(listenCtx, sess.HandleFrame)
	}()
	closeConn := func() {
		conn.Close()
		stop()
		<-done
	}

	if err := sess.WaitHistory(ctx); err != nil {
		closeConn()
		return nil, nil, fmt.Errorf("waiting for board: %w", err)
	}
	return sess, closeConn, nil
}
