// Package realtime pushes relay events to browsers over socket.io.
//
// On connect a client gets the current feed as "snapshot"; afterwards every
// relayed event arrives as "update". Clients authenticate with the session
// cookie or a token query parameter (?token=<idToken>).
package realtime

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"

	"reliefmatch/backend/internal/authctx"
	"reliefmatch/backend/internal/domain/relay"
	"reliefmatch/backend/internal/middleware"

	socketio "github.com/googollee/go-socket.io"
)

const (
	namespace     = "/"
	EventSnapshot = "snapshot"
	EventUpdate   = "update"
)

var errNoCredentials = errors.New("missing session cookie or token")

// broadcaster is the part of *socketio.Server used to fan out events.
type broadcaster interface {
	BroadcastToNamespace(nsp string, event string, args ...interface{}) bool
}

type Server struct {
	io   *socketio.Server
	hub  *relay.Hub
	auth middleware.TokenVerifier
}

func New(hub *relay.Hub, v middleware.TokenVerifier) *Server {
	s := &Server{io: socketio.NewServer(nil), hub: hub, auth: v}

	s.io.OnConnect(namespace, s.onConnect)
	s.io.OnEvent(namespace, EventSnapshot, func(c socketio.Conn) {
		c.Emit(EventSnapshot, s.hub.Snapshot())
	})
	s.io.OnError(namespace, func(c socketio.Conn, err error) {
		if c != nil {
			log.Printf("[realtime] conn %s: %v", c.ID(), err)
			return
		}
		log.Printf("[realtime] %v", err)
	})
	s.io.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		log.Printf("[realtime] conn %s disconnected: %s", c.ID(), reason)
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHTTP(w, r)
}

// Run serves socket.io and forwards hub events until ctx is done.
func (s *Server) Run(ctx context.Context) {
	go func() {
		if err := s.io.Serve(); err != nil {
			log.Printf("[realtime] serve: %v", err)
		}
	}()
	defer func() {
		if err := s.io.Close(); err != nil {
			log.Printf("[realtime] close: %v", err)
		}
	}()

	sub := s.hub.Subscribe()
	defer sub.Close()
	forward(ctx, sub, s.io)
}

func forward(ctx context.Context, sub *relay.Subscription, b broadcaster) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.C():
			if !ok {
				return
			}
			b.BroadcastToNamespace(namespace, EventUpdate, e)
		}
	}
}

func (s *Server) onConnect(c socketio.Conn) error {
	sess, err := s.authenticate(c.Context(), c.RemoteHeader(), c.URL())
	if err != nil {
		log.Printf("[realtime] rejecting %s: %v", c.RemoteAddr(), err)
		return err
	}
	c.SetContext(sess)
	c.Emit(EventSnapshot, s.hub.Snapshot())
	return nil
}

func (s *Server) authenticate(connCtx interface{}, h http.Header, u url.URL) (*authctx.Session, error) {
	ctx, ok := connCtx.(context.Context)
	if !ok || ctx == nil {
		ctx = context.Background()
	}
	cookie, token := credentials(h, u)
	switch {
	case cookie != "":
		tok, err := s.auth.VerifySessionCookieAndCheckRevoked(ctx, cookie)
		if err != nil {
			return nil, err
		}
		return middleware.SessionFromToken(tok), nil
	case token != "":
		tok, err := s.auth.VerifyIDTokenAndCheckRevoked(ctx, token)
		if err != nil {
			return nil, err
		}
		return middleware.SessionFromToken(tok), nil
	}
	return nil, errNoCredentials
}

// credentials pulls the session cookie from the handshake headers, falling
// back to the token query parameter.
func credentials(h http.Header, u url.URL) (cookie, token string) {
	r := http.Request{Header: h}
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil {
		cookie = c.Value
	}
	return cookie, u.Query().Get("token")
}
