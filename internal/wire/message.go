// Package wire defines the Request/Response messages exchanged between
// client and server, and their fixed-schema compact binary encoding.
// encoding/gob carries each message as a position-tagged binary blob with
// no length prefix of its own beyond what gob already writes, matching
// how other Bitcask-family key-value stores frame their wire records.
package wire

import (
	"encoding/gob"
	"io"

	"github.com/devraj-nair/kvcask/internal/kverrors"
)

// RequestKind distinguishes the three request variants by position.
type RequestKind uint8

const (
	ReqGet RequestKind = iota
	ReqSet
	ReqRemove
)

// Request is sent once per connection by the client.
type Request struct {
	Kind  RequestKind
	Key   string
	Value string // only meaningful for ReqSet
}

// Get builds a Get(key) request.
func Get(key string) Request { return Request{Kind: ReqGet, Key: key} }

// Set builds a Set(key, value) request.
func Set(key, value string) Request { return Request{Kind: ReqSet, Key: key, Value: value} }

// Remove builds a Remove(key) request.
func Remove(key string) Request { return Request{Kind: ReqRemove, Key: key} }

// ResponseKind distinguishes the three response variants by position.
type ResponseKind uint8

const (
	RespOK ResponseKind = iota
	RespNotFound
	RespErr
)

// Response is sent once per connection by the server.
type Response struct {
	Kind  ResponseKind
	Value string // the Ok value, or the Err diagnostic message
}

// OK builds an Ok(value) response.
func OK(value string) Response { return Response{Kind: RespOK, Value: value} }

// NotFound builds a NotFound response.
func NotFound() Response { return Response{Kind: RespNotFound} }

// Err builds an Err(msg) response.
func Err(msg string) Response { return Response{Kind: RespErr, Value: msg} }

// IsOK, IsNotFound and IsErr let callers branch on variant without
// reaching into Kind directly.
func (r Response) IsOK() bool       { return r.Kind == RespOK }
func (r Response) IsNotFound() bool { return r.Kind == RespNotFound }
func (r Response) IsErr() bool      { return r.Kind == RespErr }

// EncodeRequest writes exactly one Request to w.
func EncodeRequest(w io.Writer, req Request) error {
	if err := gob.NewEncoder(w).Encode(req); err != nil {
		return kverrors.Wrap(kverrors.Serialization, "encode request", err)
	}
	return nil
}

// DecodeRequest reads exactly one Request from r.
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	if err := gob.NewDecoder(r).Decode(&req); err != nil {
		return Request{}, kverrors.Wrap(kverrors.Serialization, "decode request", err)
	}
	return req, nil
}

// EncodeResponse writes exactly one Response to w.
func EncodeResponse(w io.Writer, resp Response) error {
	if err := gob.NewEncoder(w).Encode(resp); err != nil {
		return kverrors.Wrap(kverrors.Serialization, "encode response", err)
	}
	return nil
}

// DecodeResponse reads exactly one Response from r.
func DecodeResponse(r io.Reader) (Response, error) {
	var resp Response
	if err := gob.NewDecoder(r).Decode(&resp); err != nil {
		return Response{}, kverrors.Wrap(kverrors.Serialization, "decode response", err)
	}
	return resp, nil
}
