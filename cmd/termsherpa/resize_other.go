//go:build !unix

package main

import (
	"context"

	"pkt.systems/termsherpa"
	"pkt.systems/termsherpa/schema"
)

// watchResize is a no-op where SIGWINCH is unavailable.
func watchResize(ctx context.Context, app *termsherpa.App, id schema.SessionID) {}
