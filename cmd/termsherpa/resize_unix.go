//go:build unix

package main

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"pkt.systems/pslog"
	"pkt.systems/termsherpa"
	"pkt.systems/termsherpa/schema"
)

// watchResize propagates terminal size changes to the session.
func watchResize(ctx context.Context, app *termsherpa.App, id schema.SessionID) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)
	defer signal.Stop(winch)
	for {
		select {
		case <-ctx.Done():
			return
		case <-winch:
			cols, rows, err := term.GetSize(fd)
			if err != nil {
				continue
			}
			if _, err := app.Service.Resize(ctx, schema.ResizeRequest{
				SessionID: id, Rows: rows, Cols: cols,
			}); err != nil {
				pslog.Ctx(ctx).Debug("resize failed", "err", err)
				return
			}
		}
	}
}
