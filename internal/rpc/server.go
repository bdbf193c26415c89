// Package rpc exposes the portal over JSON-RPC 2.0 on HTTP and provides a
// matching client.
package rpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dusk-indust/stageresults/internal/portal"
)

// handlerFunc decodes params and runs one method.
type handlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Server is the HTTP server that exposes a portal.
type Server struct {
	portal  *portal.Portal
	log     *slog.Logger
	methods map[string]handlerFunc
	http    *http.Server
}

// NewServer creates a JSON-RPC server for p.
func NewServer(p *portal.Portal, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{portal: p, log: log}
	s.methods = s.routes()
	return s
}

// method adapts a typed handler to handlerFunc.
func method[P any](fn func(ctx context.Context, params P) (any, error)) handlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var params P
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &params); err != nil {
				return nil, &paramsError{err: err}
			}
		}
		return fn(ctx, params)
	}
}

// paramsError marks a params decoding failure.
type paramsError struct{ err error }

func (e *paramsError) Error() string { return "Invalid params: " + e.err.Error() }
