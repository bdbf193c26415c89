package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Handler returns the HTTP handler serving JSON-RPC on POST /.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /", s.handleJSONRPC)
	return mux
}

// Serve listens on addr and serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rpc: listen %s: %w", addr, err)
	}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- s.http.Serve(ln) }()
	s.log.Info("json-rpc server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("json-rpc server stopped")
	return nil
}

// handleJSONRPC processes one JSON-RPC 2.0 request and dispatches it through
// the method table.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, ErrCodeParse, "Parse error: "+err.Error())
		return
	}
	if req.JSONRPC != JSONRPCVersion {
		writeError(w, req.ID, ErrCodeInvalidRequest, fmt.Sprintf("Invalid request: jsonrpc must be %q", JSONRPCVersion))
		return
	}

	fn, ok := s.methods[req.Method]
	if !ok {
		writeError(w, req.ID, ErrCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
		return
	}

	start := time.Now()
	result, err := fn(r.Context(), req.Params)
	if err != nil {
		var pe *paramsError
		code := codeFor(err)
		if errors.As(err, &pe) {
			code = ErrCodeInvalidParams
		}
		s.log.Debug("rpc call failed", "method", req.Method, "code", code, "err", err)
		writeError(w, req.ID, code, err.Error())
		return
	}
	s.log.Debug("rpc call", "method", req.Method, "took", time.Since(start))
	writeResult(w, req.ID, result)
}

// writeResult writes a successful JSON-RPC response.
func writeResult(w http.ResponseWriter, id any, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		writeError(w, id, ErrCodeInternal, "Failed to marshal result: "+err.Error())
		return
	}
	json.NewEncoder(w).Encode(Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  data,
	})
}

// writeError writes a JSON-RPC error response.
func writeError(w http.ResponseWriter, id any, code int, message string) {
	json.NewEncoder(w).Encode(Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &ErrorObject{
			Code:    code,
			Message: message,
		},
	})
}
