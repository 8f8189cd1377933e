// Package server binds a TCP listener, accepts connections, and
// dispatches each to a worker pool. Per connection it frames exactly one
// request, invokes the engine operation the request implies, and writes
// exactly one response before the connection is closed.
package server

import (
	"errors"
	"log/slog"
	"net"

	"github.com/devraj-nair/kvcask/internal/engine"
	"github.com/devraj-nair/kvcask/internal/kverrors"
	"github.com/devraj-nair/kvcask/internal/pool"
	"github.com/devraj-nair/kvcask/internal/wire"
)

// Server dispatches accepted connections to a worker pool. The engine
// handle it holds is already safe to share across goroutines, so every
// dispatched job calls straight through to the same engine without any
// extra synchronization at this layer.
type Server struct {
	engine engine.Engine
	pool   pool.Pool
	ln     net.Listener
}

// New builds a Server dispatching onto eng through p. Neither is owned
// exclusively by the server: callers remain responsible for closing the
// engine once the server has stopped.
func New(eng engine.Engine, p pool.Pool) *Server {
	return &Server{engine: eng, pool: p}
}

// Listen binds addr without accepting connections yet. Start calls this
// internally; callers that need to learn the bound address before the
// accept loop begins (tests binding an ephemeral port with ":0") can
// call Listen followed by Serve directly.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return kverrors.Wrap(kverrors.IO, "listen on "+addr, err)
	}
	s.ln = ln
	slog.Info("server: listening", "addr", addr)
	return nil
}

// Start binds addr and accepts connections until Close is called or the
// listener otherwise fails. Each accepted connection is handed to the
// pool; accept failures are logged and the loop continues, since one bad
// accept must never bring down an already-running server.
func (s *Server) Start(addr string) error {
	if err := s.Listen(addr); err != nil {
		return err
	}
	return s.Serve()
}

// Serve runs the accept loop against an already-bound listener (set by
// Start, or by a caller that wants to learn the bound address before
// serving begins — e.g. a test binding an ephemeral port).
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				slog.Info("server: listener closed")
				return nil
			}
			slog.Error("server: accept failed", "error", err)
			continue
		}

		s.pool.Spawn(func() {
			s.serve(conn)
		})
	}
}

// Addr returns the listener's bound address. Useful for callers that
// start the server on an ephemeral port ("addr:0").
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops the accept loop by closing the listener. Connections
// already dispatched to the pool are left to finish on their own.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}

// serve reads one request, invokes the engine, and writes one response.
// Any I/O or serialization failure on this connection is logged and
// ends only this connection; it never propagates to the accept loop.
func (s *Server) serve(conn net.Conn) {
	defer conn.Close()

	req, err := wire.DecodeRequest(conn)
	if err != nil {
		slog.Error("server: decode request failed", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	resp := s.dispatch(req)

	if err := wire.EncodeResponse(conn, resp); err != nil {
		slog.Error("server: encode response failed", "remote", conn.RemoteAddr(), "error", err)
	}
}

// dispatch maps a Request onto the engine operation it implies and
// builds the matching Response.
func (s *Server) dispatch(req wire.Request) wire.Response {
	switch req.Kind {
	case wire.ReqGet:
		value, ok, err := s.engine.Get(req.Key)
		if err != nil {
			slog.Error("server: get failed", "key", req.Key, "error", err)
			return wire.Err(err.Error())
		}
		if !ok {
			return wire.NotFound()
		}
		return wire.OK(value)

	case wire.ReqSet:
		if err := s.engine.Set(req.Key, req.Value); err != nil {
			slog.Error("server: set failed", "key", req.Key, "error", err)
			return wire.Err(err.Error())
		}
		return wire.OK("")

	case wire.ReqRemove:
		if err := s.engine.Remove(req.Key); err != nil {
			if errors.Is(err, kverrors.ErrKeyNotFound) {
				return wire.NotFound()
			}
			slog.Error("server: remove failed", "key", req.Key, "error", err)
			return wire.Err(err.Error())
		}
		return wire.OK("")

	default:
		slog.Error("server: unknown request kind", "kind", req.Kind)
		return wire.Err("unknown request kind")
	}
}
