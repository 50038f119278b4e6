// Package rpc exposes record methods over a JSON-RPC 2.0 endpoint shaped like
// the host's call_kw route. It provides an in-process Dispatcher, a net/http
// handler with routing helpers, an HTTP Client, and an OpenAPI description of
// the endpoint.
//
// The handler accepts POST requests carrying
//
//	{"jsonrpc": "2.0", "method": "call", "id": 1,
//	 "params": {"model": "g2p.reg.id", "method": "get_auth_oauth_provider", "args": [42]}}
//
// and answers with a JSON-RPC result or error object.
package rpc
