package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const Version = "2.0"

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeServerError    = -32000
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// Request is the JSON-RPC envelope posted to the call route.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	ID      json.RawMessage `json:"id,omitempty"`
	Params  CallParams      `json:"params"`
}

// CallParams names the model method to run.
type CallParams struct {
	Model  string         `json:"model"`
	Method string         `json:"method"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs,omitempty"`
}

// Response is the JSON-RPC reply envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object. Clients surface it as a Go error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc: %s (code %d)", e.Message, e.Code)
}

// Handler builds a net/http handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds the call handler from a pre-constructed Options
// value.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	log := opts.Logger.Named("rpc")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				log.Warn("call rejected by guard", zap.Error(err))
				writeGuardError(w, err)
				return
			}
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		var req Request
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			writeResponse(w, Response{JSONRPC: Version, ID: nullID, Error: &Error{Code: CodeParseError, Message: "parse error"}})
			return
		}
		id := req.ID
		if len(id) == 0 {
			id = nullID
		}
		if req.JSONRPC != Version || req.Params.Model == "" || req.Params.Method == "" {
			writeResponse(w, Response{JSONRPC: Version, ID: id, Error: &Error{Code: CodeInvalidRequest, Message: "invalid request"}})
			return
		}

		fields := []zap.Field{zap.String("model", req.Params.Model), zap.String("method", req.Params.Method)}
		result, err := opts.Dispatcher.Call(r.Context(), req.Params.Model, req.Params.Method, req.Params.Args)
		if err != nil {
			rpcErr := toError(err)
			log.Warn("call failed", append(fields, zap.Int("code", rpcErr.Code), zap.Error(err))...)
			writeResponse(w, Response{JSONRPC: Version, ID: id, Error: rpcErr})
			return
		}
		log.Debug("call served", fields...)
		writeResponse(w, Response{JSONRPC: Version, ID: id, Result: result})
	})
}

var nullID = json.RawMessage("null")

func toError(err error) *Error {
	var rpcErr *Error
	switch {
	case errors.As(err, &rpcErr):
		return rpcErr
	case errors.Is(err, ErrMethodNotFound):
		return &Error{Code: CodeMethodNotFound, Message: err.Error()}
	case errors.Is(err, ErrInvalidParams):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return &Error{Code: CodeServerError, Message: err.Error()}
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(resp)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}
