package wsgi2asgi

import (
	"context"

	"github.com/loopbridge/loopbridge/asgiapp"
	"github.com/loopbridge/loopbridge/bridgeerr"
)

// serveLifespan implements the trivial lifespan ack WSGIMiddleware.__call__
// performs for scope["type"] == "lifespan": no WSGI application has a
// lifespan hook to run, so startup and shutdown are acknowledged
// immediately rather than rejected outright.
func serveLifespan(ctx context.Context, receive asgiapp.Receive, send asgiapp.Send) error {
	msg, err := receive(ctx)
	if err != nil {
		return err
	}
	if msg.Type != asgiapp.TypeLifespanStartup {
		return bridgeerr.ErrProtocolViolation
	}
	if err := send(ctx, asgiapp.Message{Type: asgiapp.TypeLifespanStartupComplete}); err != nil {
		return err
	}

	msg, err = receive(ctx)
	if err != nil {
		return err
	}
	if msg.Type != asgiapp.TypeLifespanShutdown {
		return bridgeerr.ErrProtocolViolation
	}
	return send(ctx, asgiapp.Message{Type: asgiapp.TypeLifespanShutdownComplete})
}
