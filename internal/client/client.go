// Package client provides a single-shot request/response client: for
// each call it opens a fresh connection to the server, sends one
// Request, reads exactly one Response, and closes the connection. There
// is no connection pooling or retry; each call is its own short-lived
// TCP session, matching the server's one-request-per-connection
// protocol.
package client

import (
	"net"

	"github.com/devraj-nair/kvcask/internal/kverrors"
	"github.com/devraj-nair/kvcask/internal/wire"
)

// Send opens a connection to addr, writes req, and reads back the
// response, mapping it as follows:
//
//   - Ok(value)   -> (value, true, nil)
//   - NotFound    -> ("", false, nil) for Get; ("", false, ErrKeyNotFound) for Remove
//   - Err(msg)    -> ("", false, ResponseErr(msg))
//
// Set never observes NotFound; a server that returns one for a Set is a
// protocol violation surfaced as an Unspecified error.
func Send(req wire.Request, addr string) (string, bool, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return "", false, kverrors.Wrap(kverrors.IO, "dial "+addr, err)
	}
	defer conn.Close()

	if err := wire.EncodeRequest(conn, req); err != nil {
		return "", false, err
	}

	resp, err := wire.DecodeResponse(conn)
	if err != nil {
		return "", false, err
	}

	switch resp.Kind {
	case wire.RespOK:
		return resp.Value, true, nil
	case wire.RespNotFound:
		if req.Kind == wire.ReqRemove {
			return "", false, kverrors.ErrKeyNotFound
		}
		if req.Kind == wire.ReqSet {
			return "", false, kverrors.New(kverrors.Unspecified, "server returned NotFound for Set")
		}
		return "", false, nil
	case wire.RespErr:
		return "", false, kverrors.ResponseErr(resp.Value)
	default:
		return "", false, kverrors.New(kverrors.Unspecified, "unknown response kind")
	}
}

// Get requests key from addr. A miss is (_, false, nil), not an error.
func Get(key, addr string) (string, bool, error) {
	return Send(wire.Get(key), addr)
}

// Set writes key=value to addr.
func Set(key, value, addr string) error {
	_, _, err := Send(wire.Set(key, value), addr)
	return err
}

// Remove deletes key from addr. Removing an absent key fails with
// kverrors.ErrKeyNotFound.
func Remove(key, addr string) error {
	_, _, err := Send(wire.Remove(key), addr)
	return err
}
